// Package core converts a PRF payment CSV into bulk-import files.
//
// The package holds all domain logic and is independent of any transport.
// The web server and the prfbulk CLI both drive it through [Pipeline].
//
// # Flow
//
//  1. [DecodeCSV] reads the upload through [WrapForDecoding], which enforces
//     [MaxInputBytes], skips a UTF-8 BOM and replaces invalid bytes.
//     Workbooks go through [DecodeXLSX] or [DecodeXLS] instead; [DecoderFor]
//     picks one from the file name.
//  2. [ValidateHeader] checks the header against the required columns and
//     returns a [Layout] that maps each column to its position.
//  3. [Classify] turns every data row into a new member, an existing member
//     or a rejection. Rows are classified in parallel, results keep input
//     order.
//  4. [Dedupe] drops exact duplicates of an earlier accepted row.
//  5. [Chunk] splits each category into files of at most [ChunkSize] rows.
//  6. [AssignNames] numbers the files from the caller's start sequence, new
//     member files first.
//  7. A [Packager] turns the resulting [Bundle] into an artifact.
//
// # Phases
//
// A [Pipeline] moves through idle, validating, transforming, splitting,
// naming, packaging and finally complete or failed. Only one run is active
// per Pipeline; [Pipeline.Reset] abandons it.
//
// # Error Handling
//
// Findings about the file itself are reported as [Message] values with a
// [Code] (ERR_* or WARN_*). Environment errors returned from functions are
// mapped to support codes with [MapError].
package core

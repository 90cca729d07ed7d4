// Package database provides the SQLite output sink for userclean.
//
// When the output path ends in .db, .sqlite or .sqlite3 the cleaned dataset
// is stored as a single SQLite file instead of JSON. The file holds:
//   - the cleaned records in input order
//   - the domain and city frequency tables with their insertion sequence
//   - one row of run metadata (id, mode, counts, digest)
//
// Each write replaces the previous contents, so the file always reflects
// the latest run.
package database

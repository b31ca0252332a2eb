// Package loader reads the shop input files into a shopload.DataSet.
//
// Each file has a header row; columns are matched by name, so column order
// and extra columns do not matter. Rows with an empty value in any column are
// dropped and counted. Values that are present but malformed fail the load
// with an error wrapping shopload.ErrInvalidData.
package loader

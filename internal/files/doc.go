// Package files groups the input-file concerns of shopload.
//
// Sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory providers
//   - loader: reads customers.csv, products.csv and orders.csv into a shopload.DataSet
//
// # Usage
//
//	fsProvider := filesystem.NewOSFileSystem()
//	csvLoader := loader.New(fsProvider, logger)
//	data, err := csvLoader.Load("./data")
package files

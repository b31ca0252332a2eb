// Package manager implements shopload.DataManager: schema reset, CSV import
// and read-back verification of the customers, products and orders tables.
//
// Every operation obtains its own connection through db.WithConnection and
// releases it before returning, whatever the outcome. Statements are built per
// dialect (MySQL, PostgreSQL, SQLite) in schema.go; row values always travel
// as bind parameters.
//
// # Example Usage
//
//	mgr := manager.New(connector, loader.New(filesystem.NewOSFileSystem(), logger), logger, os.Stdout, runCfg)
//
//	if err := mgr.TestConnection(ctx); err != nil {
//	    return err
//	}
//	err := mgr.CreateTables(ctx)
//	err = mgr.ImportCSVData(ctx)
//	err = mgr.VerifyData(ctx)
//
// # Thread Safety
//
// Manager is NOT safe for concurrent use. Create separate instances
// for concurrent operations.
package manager

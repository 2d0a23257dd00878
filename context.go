package excelextract

// Context is handed to validation callbacks for the cell being extracted.
type Context struct {
	cell    CellAddress
	aborted bool
}

func newContext(cell CellAddress) *Context {
	return &Context{cell: cell}
}

// CellAddress returns the address of the cell being extracted.
func (c *Context) CellAddress() CellAddress {
	return c.cell
}

// Abort stops the extraction. The record being built is still returned,
// without this field and without any field registered after it, and no
// further rows are read.
func (c *Context) Abort() {
	c.aborted = true
}

// Aborted reports whether Abort was called.
func (c *Context) Aborted() bool {
	return c.aborted
}

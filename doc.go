/*
Package excelextract maps spreadsheet rows to Go structs through rules built in code.

High-level features:

  - Scalar properties: one cell per row into one field, bound with
    Property(func(*T) *V), Setter(func(*T, V)) or FieldByName[T]("Name")
  - Struct tags via WithTaggedProperties: `col:"3"`, `excelcol:"C"`, `excel:"Header"`
  - Span collections: a column range of the row, blank cells skipped
  - Paired collections: a column range, each item gets a header-row cell and a row cell
  - Unpivot collections: repeated column groups, delimited by header labels, become items
  - Validation callbacks (Hooks) before and after conversion; Context.Abort
    ends the run after returning the record being built
  - Type conversion for string, int*, uint*, float*, bool, time.Time (custom layout
    and Excel serial support), pointers to those, any and encoding.TextUnmarshaler
  - Struct validation via go-playground/validator
  - Lazy runs: Rows.Next / Rows.All over a fixed range or while a predicate holds

Sheets are read through the Sheet interface; Worksheet adapts an *excelize.File.

	f, err := excelize.OpenFile("branches.xlsx")
	...
	ws, err := excelextract.OpenWorksheet(f, "Branches")
	...
	rows := excelextract.Extract[Branch](ws).
		WithProperty(excelextract.Property(func(b *Branch) *string { return &b.Name }), "A").
		WithProperty(excelextract.Property(func(b *Branch) *string { return &b.Location }), "B").
		GetData(2, 3)
	for rows.Next() {
		fmt.Println(rows.Record().Name)
	}
	if err := rows.Err(); err != nil {
		...
	}
*/
package excelextract

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dreamph/excelextract"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type Revenue struct {
	Month  string
	Amount float64
}

type Branch struct {
	Code     string `validate:"required"`
	Name     string `validate:"required"`
	Opened   time.Time
	Staff    int `validate:"gte=0"`
	Revenues []Revenue
}

type Product struct {
	Code   string    `excel:"Code"   validate:"required"`
	Name   string    `col:"2"        validate:"required"`
	Price  float64   `excelcol:"C"   validate:"required,gt=0"`
	Active bool      `excel:"Active"`
	Since  time.Time `excel:"Since"  fmt:"2006-01-02"`
}

func main() {
	f, err := excelize.OpenFile("branches.xlsx")
	if err != nil {
		log.Fatalf("open error: %v", err)
	}
	defer f.Close()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	readBranches(f, logger)
	readProducts(f)
}

// Branches: Code | Name | Opened | Staff | Month | Revenue | Month | Revenue | ...
func readBranches(f *excelize.File, logger *zap.Logger) {
	sheet, err := excelextract.OpenWorksheet(f, "Branches")
	if err != nil {
		log.Fatalf("sheet error: %v", err)
	}

	cfg := excelextract.Extract[Branch](sheet,
		excelextract.WithLogger(logger),
		excelextract.UseValidator(validator.New()),
	).
		WithProperty(excelextract.Property(func(b *Branch) *string { return &b.Code }, excelextract.Hooks[string]{
			// a "TOTAL" row ends the data block
			BeforeConvert: excelextract.AbortWhen(func(raw any) bool { return raw == "TOTAL" }),
		}), "A").
		WithProperty(excelextract.Property(func(b *Branch) *string { return &b.Name }), "B").
		WithProperty(excelextract.Property(func(b *Branch) *time.Time { return &b.Opened },
			excelextract.Hooks[time.Time]{Layout: "02.01.2006"}), "C").
		WithProperty(excelextract.Property(func(b *Branch) *int { return &b.Staff }), "D").
		WithCollectionProperty(excelextract.Unpivot(
			excelextract.Slice(func(b *Branch) *[]Revenue { return &b.Revenues }),
			1, "E",
			func(g *excelextract.Group[Revenue]) {
				g.WithProperty(excelextract.Property(func(r *Revenue) *string { return &r.Month }), "Month").
					WithProperty(excelextract.Property(func(r *Revenue) *float64 { return &r.Amount }), "Revenue")
			}))
	if err := cfg.Err(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	rows := cfg.GetDataUntilBlank(2, "A")
	fmt.Println("== BRANCHES ==")
	for rows.Next() {
		b := rows.Record()
		if b.Code == "" {
			// the aborted TOTAL row
			continue
		}
		fmt.Printf("row=%d %s %s staff=%d months=%d\n", rows.Row(), b.Code, b.Name, b.Staff, len(b.Revenues))
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("extract error: %v", err)
	}

	fmt.Println("== ROW ERRORS ==")
	for _, e := range rows.RowErrors() {
		fmt.Printf("row=%d col=%s field=%s msg=%v\n", e.Row, e.ColLetter, e.Field, e.Err)
	}
}

// Products: Code | Name | Price | Active | Since
func readProducts(f *excelize.File) {
	sheet, err := excelextract.OpenWorksheet(f, "Products")
	if err != nil {
		log.Fatalf("sheet error: %v", err)
	}

	products, err := excelextract.Extract[Product](sheet).
		WithTaggedProperties(1).
		GetData(2, 20).
		Collect()
	if err != nil {
		log.Fatalf("extract error: %v", err)
	}

	fmt.Println("== PRODUCTS ==")
	for i, p := range products {
		fmt.Printf("%d: %+v\n", i+1, *p)
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"tabprep/pkg/data"
	"tabprep/pkg/dataprep"
)

//
// ---------------------- CLI FLAGS DOCUMENTATION ----------------------
//
// --input    : Path to input CSV file. Empty = built-in sample of users
// --preview  : Number of rows to preview in console
// --encode   : Encoding for categorical vars: "onehot", "label", "freq"
// --cols     : Number of columns shown in the preview
//
// Example:
//   go run main.go --input train_users.csv --encode onehot --preview 3
//
// ---------------------------------------------------------------------
//

func sampleUsers() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"gxn3p5htnn", "820tgsjxq7", "4ft3gnwmtx", "bjjt8pjhuk"}, series.String, "id"),
		series.New([]string{"-unknown-", "MALE", "FEMALE", "FEMALE"}, series.String, "gender"),
		series.New([]string{"facebook", "facebook", "basic", "facebook"}, series.String, "signup_method"),
		series.New([]int{2010, 2011, 2010, 2011}, series.Int, "year_account_created"),
		series.New([]int{6, 5, 9, 12}, series.Int, "month_account_created"),
		series.New([]int{28, 25, 28, 5}, series.Int, "day_account_created"),
	)
}

// previewData prints the first n rows and at most cols columns.
func previewData(df dataframe.DataFrame, n, cols int) {
	if n > df.Nrow() {
		n = df.Nrow()
	}
	names := df.Names()
	if cols > len(names) {
		cols = len(names)
	}
	for _, h := range names[:cols] {
		fmt.Printf("%-24s", h)
	}
	fmt.Println()
	for i := 0; i < n; i++ {
		for _, h := range names[:cols] {
			fmt.Printf("%-24s", df.Col(h).Elem(i).String())
		}
		fmt.Println()
	}
}

func main() {
	inputPath := flag.String("input", "", "Path to input CSV file")
	previewRows := flag.Int("preview", 5, "Number of rows to preview in console")
	encodeMethod := flag.String("encode", dataprep.MethodOneHot, "Encoding: onehot, label, freq")
	previewCols := flag.Int("cols", 12, "Number of columns to preview")
	flag.Parse()

	categorical := []string{"gender", "signup_method"}

	df := sampleUsers()
	if *inputPath != "" {
		var err error
		df, err = data.LoadCSV(*inputPath, categorical...)
		if err != nil {
			log.Fatalf("Error reading CSV file: %v", err)
		}
	}
	fmt.Printf("Loaded data: %d rows, %d columns\n", df.Nrow(), df.Ncol())

	// ---- Encoding ----
	df, err := dataprep.EncodeColumns(df, categorical, *encodeMethod)
	if err != nil {
		log.Fatalf("Error encoding: %v", err)
	}
	fmt.Printf("After %s encoding: %d columns\n", *encodeMethod, df.Ncol())

	// ---- Holiday distances ----
	gen := dataprep.NewHolidayGenerator()
	df, err = gen.Apply(df)
	if err != nil {
		log.Fatalf("Error adding holiday features: %v", err)
	}
	fmt.Printf("After holiday features: %d columns\n", df.Ncol())

	fmt.Println("\nPreview of processed data:")
	previewData(df, *previewRows, *previewCols)

	// Single-record form, as a service handler would call it.
	rec, err := gen.ProcessRecord(map[string]interface{}{
		dataprep.DefaultYearField:  2015,
		dataprep.DefaultMonthField: 1,
		dataprep.DefaultDayField:   1,
	})
	if err != nil {
		log.Fatalf("Error processing record: %v", err)
	}
	fmt.Fprintf(os.Stdout, "\n2015-01-01 is %v days from New Year's Day and %v from Christmas\n",
		rec["days_to_new_years_day"], rec["days_to_christmas_day"])
}

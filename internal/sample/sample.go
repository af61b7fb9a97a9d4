// Package sample generates messy inventory spreadsheets for trying out extraction.
//
// Rows mimic a free-form operations log: most carry a natural-language valve
// description, the rest carry unrelated notes. The text lands in one of several
// differently named columns and the column order is shuffled, so a reader has
// to find the textual content rather than rely on a fixed layout.
package sample

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Defaults for Options.
const (
	DefaultRows       = 100
	DefaultValveRatio = 0.7
	sheetName         = "Sheet1"
)

// Options configures generation.
type Options struct {
	// Rows is the number of data rows.
	Rows int

	// Seed makes the output reproducible.
	Seed uint64

	// ValveRatio is the share of rows carrying a valve description (0-1).
	ValveRatio float64
}

// Table is a generated sheet.
type Table struct {
	// Header holds the column names in sheet order.
	Header []string

	// Rows holds the data rows aligned with Header. Empty strings are blank cells.
	Rows [][]string

	// Serials lists the valve serial numbers written, in row order.
	Serials []string
}

var templates = []string{
	"Just received a {type} valve from {manufacturer}. The model number is {serial}. {material} construction makes it perfect for high-pressure applications up to {pressure}. {extra}",
	"Checking inventory: Found a {material} {type} valve (ID: {serial}) in warehouse B. Dimensions are roughly {width} inches wide by {height} inches tall. {extra}",
	"Customer inquiry about {manufacturer}'s {type} valve, {serial}. They're particularly interested in its {pressure} rating. {extra}",
	"Maintenance report: The {type} valve ({serial}) from {manufacturer} needs inspection. It's a {material} unit rated for {pressure}. {extra}",
	"New shipment arrived: {manufacturer} {type} valves. Serial {serial} included. Made of {material}, these units measure {width}\" x {height}\". {extra}",
}

var extras = []string{
	"Recommended for chemical processing applications.",
	"Perfect for water treatment facilities.",
	"Commonly used in oil and gas industry.",
	"Ideal for high-temperature operations.",
	"Suitable for corrosive environments.",
}

var notes = []string{
	"Meeting scheduled with supplier next week",
	"Need to follow up with customer about delivery",
	"Warehouse inventory check completed",
	"Quality control inspection passed",
	"Maintenance schedule updated",
	"Order pending approval",
	"Shipping delayed due to weather",
	"Customer feedback received",
	"Training session scheduled",
	"Documentation needs update",
}

var (
	valveTypes    = []string{"butterfly", "gate", "check", "ball", "globe", "control"}
	manufacturers = []string{"ValveTech", "ValveTech Industries", "FlowControl Inc", "FlowMaster", "ValveWorks", "PrecisionFlow Systems"}
	materials     = []string{"Stainless Steel 316", "Carbon Steel", "Bronze", "Stainless Steel 304", "Cast Iron", "Titanium"}
	pressures     = []int{75, 150, 250, 300, 500, 750, 1000}
	serialLetters = []string{"A", "B", "C", "X", "Y", "Z"}
	departments   = []string{"Inventory", "Maintenance", "Sales", "Quality Control", "Shipping"}
	priorities    = []string{"Low", "Medium", "High", "Urgent"}
	statuses      = []string{"Pending", "In Progress", "Completed", "On Hold"}
	locations     = []string{"Warehouse A", "Warehouse B", "Main Office", "Production Floor", "Quality Lab"}
	followUps     = []string{"Yes", "No", "N/A"}
	noteColumns   = []string{"notes", "description", "comments", "details", "log_entry"}
)

var serialPrefixes = map[string]string{
	"butterfly": "BF",
	"gate":      "GV",
	"check":     "CV",
	"ball":      "BV",
	"globe":     "GB",
	"control":   "CT",
}

var fixedColumns = []string{
	"entry_date", "entry_id", "department", "priority", "status",
	"last_modified_by", "location", "follow_up",
}

var startDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// Generate builds a messy table.
func Generate(opts Options) Table {
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	if opts.ValveRatio <= 0 || opts.ValveRatio > 1 {
		opts.ValveRatio = DefaultValveRatio
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	columns := append(append([]string{}, fixedColumns...), noteColumns...)
	rows := make([]map[string]string, 0, opts.Rows)
	var serials []string

	for range opts.Rows {
		row := map[string]string{
			"entry_date":       startDate.AddDate(0, 0, rng.IntN(366)).Format("2006-01-02"),
			"entry_id":         fmt.Sprintf("LOG_%d", 1000+rng.IntN(9000)),
			"department":       pick(rng, departments),
			"priority":         pick(rng, priorities),
			"status":           pick(rng, statuses),
			"last_modified_by": fmt.Sprintf("USER_%d", 100+rng.IntN(900)),
			"location":         pick(rng, locations),
			"follow_up":        pick(rng, followUps),
		}

		text := pick(rng, notes)
		if rng.Float64() < opts.ValveRatio {
			var serial string
			text, serial = describe(rng)
			serials = append(serials, serial)
		}
		row[pick(rng, noteColumns)] = text
		rows = append(rows, row)
	}

	rng.Shuffle(len(columns), func(i, j int) { columns[i], columns[j] = columns[j], columns[i] })

	table := Table{Header: columns, Rows: make([][]string, len(rows)), Serials: serials}
	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, c := range columns {
			cells[j] = row[c]
		}
		table.Rows[i] = cells
	}
	return table
}

// describe writes one valve description and returns it with its serial.
func describe(rng *rand.Rand) (string, string) {
	valveType := pick(rng, valveTypes)
	serial := fmt.Sprintf("%s-%d-%s%d",
		serialPrefixes[valveType], 2020+rng.IntN(5), pick(rng, serialLetters), 100+rng.IntN(900))
	width := float64(40+rng.IntN(111)) / 10
	height := float64(30+rng.IntN(131)) / 10

	r := strings.NewReplacer(
		"{type}", valveType,
		"{manufacturer}", pick(rng, manufacturers),
		"{serial}", serial,
		"{material}", pick(rng, materials),
		"{pressure}", fmt.Sprintf("%d PSI", pressures[rng.IntN(len(pressures))]),
		"{width}", fmt.Sprintf("%.1f", width),
		"{height}", fmt.Sprintf("%.1f", height),
		"{extra}", pick(rng, extras),
	)
	return r.Replace(pick(rng, templates)), serial
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

// WriteXLSX generates a table and writes it to w as an xlsx workbook.
func WriteXLSX(w io.Writer, opts Options) (Table, error) {
	table := Generate(opts)

	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, table.Header); err != nil {
		return table, err
	}
	for i, row := range table.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return table, err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return table, fmt.Errorf("write workbook: %w", err)
	}
	return table, nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		if v != "" {
			cells[i] = v
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

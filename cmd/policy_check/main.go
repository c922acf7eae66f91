package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"myinco-admin-be/pkg/spreadsheet"

	"github.com/fatih/color"
)

func main() {
	var (
		path        string
		version     string
		headerLabel string
		maxCands    int
	)
	flag.StringVar(&path, "file", "", "policy workbook (.xlsx) to check")
	flag.StringVar(&version, "version", "", "policy version used for {version} tokens")
	flag.StringVar(&headerLabel, "header", "", "no. header label of the sheet (default 연번)")
	flag.IntVar(&maxCands, "max-candidates", 200000, "reject policies with more candidates than this (0 = no limit)")
	flag.Parse()

	if path == "" {
		color.Red("-file is required")
		flag.Usage()
		os.Exit(2)
	}

	color.Cyan("Checking %s", path)
	wb, err := spreadsheet.ReadFile(path)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("rules: desc=%q code=%q transforms=%d group codes=%d\n",
		wb.Rule.DescRule, wb.Rule.CodeRule, len(wb.Rule.Transforms), len(wb.Code))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	report, err := checkWorkbook(ctx, wb, version, headerLabel, maxCands)
	stop()
	if err != nil {
		color.Red("Rule error: %v", err)
		os.Exit(1)
	}

	for _, detail := range report.Details {
		color.Yellow("%-6s %-20s %s", detail.Cell, detail.Code, detail.Message)
	}
	summary := fmt.Sprintf("%d rows, %d valid, %d invalid", report.Counts.Total, report.Counts.Valid, report.Counts.Invalid)
	if report.HasErrors() {
		color.Red(summary)
		os.Exit(1)
	}
	color.Green(summary)
}

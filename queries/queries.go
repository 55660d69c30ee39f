package queries

import (
	"embed"
	"fmt"
)

//go:embed delete/*.sql insert/*.sql select/*.sql update/*.sql schema/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type DeleteQueries struct {
	AllTaskStates   string
	StockBySymbol   string
}

type InsertQueries struct {
	FetchLog  string
	Stock     string
	TaskState string
}

type SelectQueries struct {
	AllTaskStates   string
	FetchLogsByTask string
	StockBySymbol   string
	StockCount      string
	StocksPaginated string
}

type UpdateQueries struct {
	FetchLogResult string
	StockBySymbol  string
}

type SchemaQueries struct {
	Schema string
}

type QueryHelperStruct struct {
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
	Schema SchemaQueries
}

var QueryHelper = QueryHelperStruct{
	Delete: DeleteQueries{
		AllTaskStates: "delete/all_task_states.sql",
		StockBySymbol: "delete/stock_by_symbol.sql",
	},
	Insert: InsertQueries{
		FetchLog:  "insert/fetch_log.sql",
		Stock:     "insert/stock.sql",
		TaskState: "insert/task_state.sql",
	},
	Select: SelectQueries{
		AllTaskStates:   "select/all_task_states.sql",
		FetchLogsByTask: "select/fetch_logs_by_task.sql",
		StockBySymbol:   "select/stock_by_symbol.sql",
		StockCount:      "select/stock_count.sql",
		StocksPaginated: "select/stocks_paginated.sql",
	},
	Update: UpdateQueries{
		FetchLogResult: "update/fetch_log_result.sql",
		StockBySymbol:  "update/stock_by_symbol.sql",
	},
	Schema: SchemaQueries{
		Schema: "schema/schema.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}

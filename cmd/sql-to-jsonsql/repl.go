package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/telebill-community/sql-to-jsonsql/cmd/sql-to-jsonsql/api"
	"github.com/telebill-community/sql-to-jsonsql/lib/billing"
	"github.com/telebill-community/sql-to-jsonsql/lib/jsonsql"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/parser"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/render"
)

const historyFileName = ".sql-to-jsonsql_history"

func runREPL(cfg api.Config) error {
	sp, opts, apiClient, err := buildTools(cfg)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFileName)
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	if cfg.Endpoint != "" {
		fmt.Printf("connected to %s\n", cfg.Endpoint)
	} else {
		fmt.Println("no endpoint configured, running in transpile-only mode")
	}
	fmt.Println(`type SQL statements, \tables to list known tables, exit to quit`)

	for {
		input, err := line.Prompt("sql> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch strings.ToLower(input) {
		case "exit", "quit", `\q`:
			return nil
		case `\tables`:
			tables := sp.SchemaStore().ListTables()
			if len(tables) == 0 {
				fmt.Println("no schema loaded")
				continue
			}
			for _, name := range tables {
				fmt.Println(name)
			}
			continue
		}

		evalStatement(apiClient, opts, cfg.Endpoint != "", input)
	}
}

func evalStatement(apiClient *billing.API, opts jsonsql.Options, execute bool, sql string) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if canonical, err := render.Render(stmt); err == nil {
		fmt.Printf("-- %s\n", canonical)
	}

	si, err := jsonsql.Transpile(stmt, opts)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	out, err := json.MarshalIndent(map[string]any{
		"method": string(si.Type),
		"params": si.Doc,
	}, "", "  ")
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(string(out))

	if !execute {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	data, err := apiClient.Execute(ctx, si, billing.EndpointConfig{})
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if len(data) > 0 {
		fmt.Println(string(data))
	}
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"api-test-generator/internal/llm"
	"api-test-generator/internal/parser"
	"api-test-generator/internal/types"
)

func openapiCmd(a *app) *cobra.Command {
	var (
		baseURL  string
		discover string
		useLLM   bool
		validate bool
		output   string
		execute  bool
		report   bool
	)

	c := &cobra.Command{
		Use:   "openapi [source]",
		Short: "Generate one test class per operation of an OpenAPI document",
		Long: `openapi loads an OpenAPI 3 document from a file or URL, or discovers it
under a service base URL with --discover, and generates a test class for every
operation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			started := time.Now()
			if len(args) == 0 && discover == "" {
				return errors.New("an OpenAPI source or --discover <base url> is required")
			}

			p := parser.NewSwaggerParser(parser.Options{BaseURL: baseURL, Validate: validate}, a.log)
			var doc *openapi3.T
			var err error
			if len(args) > 0 {
				doc, err = p.Load(ctx, args[0])
			} else {
				doc, err = p.Discover(ctx, discover)
			}
			if err != nil {
				return err
			}

			ops := p.Operations(doc)
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d operations\n", len(ops))

			if useLLM {
				client, err := llm.NewClient(llmConfig(a), a.log)
				if err != nil {
					return err
				}
				suggestBodies(ctx, client, ops, a.log)
			}

			requests := make([]types.RequestDescription, len(ops))
			for i, op := range ops {
				requests[i] = op.Request
			}

			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			b := &batch{
				app:      a,
				out:      cmd.OutOrStdout(),
				reporter: a.reporter(output),
				history:  store,
				write:    true,
			}
			if execute {
				b.execute = a.executor().Execute
			}
			return b.finish(b.run(ctx, requests), started, report || execute)
		},
	}

	c.Flags().StringVarP(&baseURL, "base-url", "b", "", "base URL for endpoints (default first server URL)")
	c.Flags().StringVar(&discover, "discover", "", "probe this service base URL for a Swagger/OpenAPI document")
	c.Flags().BoolVar(&useLLM, "llm", false, "ask the configured LLM for realistic request bodies")
	c.Flags().BoolVar(&validate, "validate", false, "reject documents that fail OpenAPI validation")
	c.Flags().StringVarP(&output, "output", "o", "", "output directory for generated classes (default reporting.output_dir)")
	c.Flags().BoolVar(&execute, "execute", false, "compile and run each generated class")
	c.Flags().BoolVar(&report, "report", false, "write a JSON report")
	return c
}

func llmConfig(a *app) llm.Config {
	c := a.cfg.LLM
	return llm.Config{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// suggestBodies replaces bodies that were not taken from a documented example.
// A failed suggestion keeps the schema sample.
func suggestBodies(ctx context.Context, client llm.Client, ops []parser.Operation, log *zap.Logger) {
	for i := range ops {
		op := &ops[i]
		if !types.BodyRequired(op.Method) || op.BodySource == parser.BodyExample {
			continue
		}

		var schema string
		if op.BodySchema != nil && op.BodySchema.Value != nil {
			if data, err := json.Marshal(op.BodySchema.Value); err == nil {
				schema = string(data)
			}
		}

		body, err := client.SuggestRequestBody(ctx, llm.OperationContext{
			Method:  op.Method,
			Path:    op.Path,
			Summary: op.Summary,
			Schema:  schema,
			Sample:  op.Request.RequestBody,
		})
		if err != nil {
			log.Warn("LLM suggestion failed, keeping schema sample",
				zap.String("method", op.Method),
				zap.String("path", op.Path),
				zap.Error(err))
			continue
		}
		op.Request.RequestBody = body
	}
}

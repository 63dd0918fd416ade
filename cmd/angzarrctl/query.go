package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	angzarr "github.com/eventframe/angzarr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run an event query against an aggregate",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("domain", "", "aggregate domain (required)")
	queryCmd.Flags().String("root", "", "aggregate root UUID")
	queryCmd.Flags().String("correlation-id", "", "filter by correlation ID instead of root")
	queryCmd.Flags().Uint64("from", 0, "lower sequence bound")
	queryCmd.Flags().Uint64("to", 0, "upper sequence bound (0 means open-ended)")
	queryCmd.Flags().String("as-of", "", "RFC3339 timestamp to query as of")
	queryCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	queryCmd.MarkFlagRequired("domain")
}

func runQuery(cmd *cobra.Command, args []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	rootStr, _ := cmd.Flags().GetString("root")
	correlationID, _ := cmd.Flags().GetString("correlation-id")
	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	asOf, _ := cmd.Flags().GetString("as-of")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client, err := angzarr.NewQueryClient(endpoint())
	if err != nil {
		return err
	}
	defer client.Close()

	var builder *angzarr.QueryBuilder
	if rootStr != "" {
		root, err := uuid.Parse(rootStr)
		if err != nil {
			return fmt.Errorf("invalid --root: %w", err)
		}
		builder = angzarr.NewQueryBuilder(client, domain, root)
	} else {
		builder = angzarr.NewQueryBuilderDomain(client, domain)
	}
	if correlationID != "" {
		builder = builder.ByCorrelationID(correlationID)
	}
	switch {
	case asOf != "":
		builder = builder.AsOfTime(asOf)
	case to > 0:
		builder = builder.RangeTo(from, to)
	default:
		builder = builder.Range(from)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	books, err := builder.GetEvents(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

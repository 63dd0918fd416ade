package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	angzarr "github.com/eventframe/angzarr"
	pb "github.com/eventframe/angzarr/pb"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/anypb"
)

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Send a command to an aggregate",
	RunE:  runCommand,
}

func init() {
	commandCmd.Flags().String("domain", "", "aggregate domain (required)")
	commandCmd.Flags().String("root", "", "aggregate root UUID (omit to target a new aggregate)")
	commandCmd.Flags().String("type", "", "command type name, e.g. CreateOrder (required)")
	commandCmd.Flags().String("payload", "{}", "command payload as a JSON object")
	commandCmd.Flags().Uint64("sequence", 0, "expected sequence for optimistic concurrency")
	commandCmd.Flags().String("correlation-id", "", "correlation ID (default: a fresh UUID)")
	commandCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	commandCmd.MarkFlagRequired("domain")
	commandCmd.MarkFlagRequired("type")
}

func runCommand(cmd *cobra.Command, args []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	rootStr, _ := cmd.Flags().GetString("root")
	typeName, _ := cmd.Flags().GetString("type")
	payload, _ := cmd.Flags().GetString("payload")
	sequence, _ := cmd.Flags().GetUint64("sequence")
	correlationID, _ := cmd.Flags().GetString("correlation-id")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fmt.Errorf("invalid --payload JSON: %w", err)
	}
	payloadBytes, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	cover := &pb.Cover{Domain: domain}
	if rootStr != "" {
		root, err := uuid.Parse(rootStr)
		if err != nil {
			return fmt.Errorf("invalid --root: %w", err)
		}
		cover.Root = angzarr.UUIDToProto(root)
	}
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	cover.CorrelationId = correlationID

	book := &pb.CommandBook{
		Cover: cover,
		Pages: []*pb.CommandPage{{
			Sequence: sequence,
			Command: &anypb.Any{
				TypeUrl: angzarr.TypeURL(typeName),
				Value:   payloadBytes,
			},
		}},
	}

	client, err := angzarr.NewAggregateClient(endpoint())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Handle(ctx, book)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

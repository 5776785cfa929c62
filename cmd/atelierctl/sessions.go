package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/spf13/cobra"
)

// sessionSummary is one row of `sessions list`
type sessionSummary struct {
	ID       string `json:"id"`
	Layers   int    `json:"layers"`
	Current  int    `json:"current_outfit_index"`
	Target   string `json:"active_target"`
	Garments string `json:"garments"`
	SavedAt  string `json:"saved_at"`
	Error    string `json:"error,omitempty"`
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage saved sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close(context.WithoutCancel(ctx))

			rows, err := listSessions(ctx, backend.Records)
			if err != nil {
				return err
			}
			if outputFlag == "json" {
				return printJSON(os.Stdout, rows)
			}
			return printSessionTable(os.Stdout, rows)
		},
	}
}

func listSessions(ctx context.Context, records store.Records) ([]sessionSummary, error) {
	keys, err := records.Keys(ctx, session.RecordKey(""))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	rows := make([]sessionSummary, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, session.RecordKey(""))
		row := sessionSummary{ID: id}

		blob, ok, err := records.LoadRecord(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", id, err)
		}
		if !ok {
			continue
		}
		rec, err := session.DecodeRecord(blob)
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		row.Layers = len(rec.OutfitHistory)
		row.Current = rec.CurrentOutfitIndex
		row.Target = string(rec.ActiveTarget)
		row.Garments = strings.Join(activeLabels(rec), ", ")
		row.SavedAt = rec.SavedAt.Format("2006-01-02 15:04")
		rows = append(rows, row)
	}
	return rows, nil
}

func activeLabels(rec models.SessionRecord) []string {
	var labels []string
	if len(rec.OutfitHistory) == 0 {
		return labels
	}
	for _, l := range rec.OutfitHistory[1 : rec.CurrentOutfitIndex+1] {
		labels = append(labels, l.Label())
	}
	return labels
}

func printSessionTable(w io.Writer, rows []sessionSummary) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No saved sessions.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLAYERS\tCURRENT\tTARGET\tSAVED\tOUTFIT")
	for _, r := range rows {
		outfit := r.Garments
		if r.Error != "" {
			outfit = "corrupt: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", r.ID, r.Layers, r.Current, r.Target, r.SavedAt, outfit)
	}
	return tw.Flush()
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a saved session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close(context.WithoutCancel(ctx))

			rec, err := loadRecord(ctx, backend.Records, args[0])
			if err != nil {
				return err
			}
			if outputFlag == "json" {
				return printJSON(os.Stdout, rec)
			}
			printRecord(os.Stdout, args[0], rec)
			return nil
		},
	}
}

func loadRecord(ctx context.Context, records store.Records, id string) (models.SessionRecord, error) {
	blob, ok, err := records.LoadRecord(ctx, session.RecordKey(id))
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return models.SessionRecord{}, fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
	}
	return session.DecodeRecord(blob)
}

func printRecord(w io.Writer, id string, rec models.SessionRecord) {
	fmt.Fprintf(w, "Session:  %s\n", id)
	fmt.Fprintf(w, "Saved:    %s\n", rec.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Target:   %s\n", rec.ActiveTarget)
	fmt.Fprintf(w, "Pose:     %s\n", models.PoseInstructions[rec.CurrentPoseIndex])
	if rec.TailorNotes != "" {
		fmt.Fprintf(w, "Notes:    %s\n", rec.TailorNotes)
	}
	fmt.Fprintf(w, "Wardrobe: %d garments\n\n", len(rec.Catalog))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLAYER\tPOSES\t")
	for i, l := range rec.OutfitHistory {
		marker := ""
		if i == rec.CurrentOutfitIndex {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%d\t\n", i, marker, l.Label(), len(l.PoseImages))
	}
	tw.Flush()
}

func newSessionsDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved session and its gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close(context.WithoutCancel(ctx))

			id := args[0]
			if _, ok, err := backend.Records.LoadRecord(ctx, session.RecordKey(id)); err != nil {
				return err
			} else if !ok && !force {
				return fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
			}

			if err := backend.Records.DeleteRecord(ctx, session.RecordKey(id)); err != nil {
				return fmt.Errorf("deleting session: %w", err)
			}
			if err := backend.Gallery.DeleteSession(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("clearing gallery: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Deleted session %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Clear the gallery even when no record is saved")
	return cmd
}

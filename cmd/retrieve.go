/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/spf13/cobra"
)

var (
	topK        int
	showContent bool
)

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Show the passages the backend would use to answer a query",
	Long: `Query the retrieval endpoint directly and list the ranked passages with
their similarity scores. This is useful to check what the assistant sees
before it answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Join the arguments so the query needs no quoting
		query := strings.Join(args, " ")
		resp, err := newClient(cfg).RetrieveContext(cmd.Context(), query, topK)
		if err != nil {
			return fmt.Errorf("retrieving context: %w", err)
		}

		if len(resp.RetrievedChunks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No passages found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), chunkTable(resp.RetrievedChunks, showContent))
		return nil
	},
}

// chunkTable lays out retrieved chunks, one row per chunk
func chunkTable(chunks []api.RetrievedChunk, withContent bool) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if withContent {
		fmt.Fprintln(w, "#\tID\tSCORE\tSOURCE\tCONTENT")
		fmt.Fprintln(w, "-\t--\t-----\t------\t-------")
	} else {
		fmt.Fprintln(w, "#\tID\tSCORE\tSOURCE")
		fmt.Fprintln(w, "-\t--\t-----\t------")
	}

	for i, c := range chunks {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%s", i+1, c.ID, c.SimilarityScore, metadataSource(c.Metadata))
		if withContent {
			fmt.Fprintf(w, "\t%s", truncate(c.Content, 60))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

// metadataSource picks the most useful citation from chunk metadata
func metadataSource(metadata map[string]any) string {
	for _, key := range []string{"source_url", "url", "section_title"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	if len(metadata) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s=%v", keys[0], metadata[keys[0]])
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().IntVarP(&topK, "top-k", "k", api.DefaultTopK, "number of passages to retrieve")
	retrieveCmd.Flags().BoolVar(&showContent, "content", false, "include the passage text")
}

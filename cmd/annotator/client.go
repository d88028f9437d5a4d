package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getzep/nlp-annotator-api/pkg/client"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var (
	apiURL        string
	apiKey        string
	clientTimeout time.Duration
	clientRetries int

	batchSize         int
	concurrency       int
	rounds            int
	withRelationships bool
	withProperties    bool
	entityNames       []string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a running annotator server",
}

var clientAnnotatorsCmd = &cobra.Command{
	Use:   "annotators",
	Short: "List the annotators of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newClient().Annotators(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var clientFeaturesCmd = &cobra.Command{
	Use:   "features <annotator>",
	Short: "Print the entities, relationships and properties an annotator supports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		features, err := newClient().Features(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(features)
	},
}

var clientAnnotateCmd = &cobra.Command{
	Use:     "annotate <annotator> <file>",
	Short:   "Annotate the texts of a .txt or .jsonl file and print one JSON line per text",
	Example: "annotator client annotate SimpleTextGeographyAnnotator texts.txt --relationships",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := readTexts(args[1])
		if err != nil {
			return err
		}
		c := newClient()
		ctx := cmd.Context()
		for _, batch := range batches(texts, batchSize) {
			entities, err := c.FindEntities(ctx, args[0], batch, entityNames)
			if err != nil {
				return err
			}
			results := make([]textAnnotations, len(batch))
			for i := range batch {
				results[i] = textAnnotations{Text: batch[i], Entities: entities[i]}
			}
			if withRelationships {
				relationships, err := c.FindRelationships(ctx, args[0], batch, entities, nil)
				if err != nil {
					return err
				}
				for i := range results {
					results[i].Relationships = relationships[i]
				}
			}
			if withProperties {
				properties, err := c.FindProperties(ctx, args[0], batch, nil)
				if err != nil {
					return err
				}
				for i := range results {
					results[i].Properties = properties[i]
				}
			}
			for _, result := range results {
				line, err := json.Marshal(result)
				if err != nil {
					return err
				}
				fmt.Println(string(line))
			}
		}
		return nil
	},
}

var clientBenchCmd = &cobra.Command{
	Use:   "bench <annotator> <file>",
	Short: "Measure find_entities throughput for a batch size and concurrency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := readTexts(args[1])
		if err != nil {
			return err
		}
		var size uint64
		for _, text := range texts {
			size += uint64(len(text))
		}

		c := newClient()
		work := batches(texts, batchSize)

		var mu sync.Mutex
		var latencies []time.Duration

		start := time.Now()
		for round := 0; round < rounds; round++ {
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for _, batch := range work {
				g.Go(func() error {
					t := time.Now()
					if _, err := c.FindEntities(ctx, args[0], batch, entityNames); err != nil {
						return err
					}
					mu.Lock()
					latencies = append(latencies, time.Since(t))
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)

		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		total := uint64(rounds) * size
		fmt.Printf("annotator:   %s\n", args[0])
		fmt.Printf("texts:       %s x %d rounds (%s)\n",
			humanize.Comma(int64(len(texts))), rounds, humanize.Bytes(total))
		fmt.Printf("requests:    %s (batch size %d, concurrency %d)\n",
			humanize.Comma(int64(len(latencies))), batchSize, concurrency)
		fmt.Printf("elapsed:     %s\n", elapsed.Round(time.Millisecond))
		fmt.Printf("throughput:  %s/s\n", humanize.Bytes(uint64(float64(total)/elapsed.Seconds())))
		if len(latencies) > 0 {
			fmt.Printf("latency p50: %s\n", percentile(latencies, 0.50).Round(time.Millisecond))
			fmt.Printf("latency p95: %s\n", percentile(latencies, 0.95).Round(time.Millisecond))
		}
		return nil
	},
}

type textAnnotations struct {
	Text          string                 `json:"text"`
	Entities      models.EntityMap       `json:"entities"`
	Relationships models.RelationshipMap `json:"relationships,omitempty"`
	Properties    models.PropertyMap     `json:"properties,omitempty"`
}

func init() {
	clientCmd.AddCommand(clientAnnotatorsCmd)
	clientCmd.AddCommand(clientFeaturesCmd)
	clientCmd.AddCommand(clientAnnotateCmd)
	clientCmd.AddCommand(clientBenchCmd)

	clientCmd.PersistentFlags().
		StringVar(&apiURL, "url", "http://localhost:8000", "base URL of the annotator server")
	clientCmd.PersistentFlags().
		StringVar(&apiKey, "api-key", os.Getenv("NLP_API_AUTH_API_KEY"), "API key sent as a bearer token")
	clientCmd.PersistentFlags().
		DurationVar(&clientTimeout, "timeout", 60*time.Second, "timeout of a single request")
	clientCmd.PersistentFlags().IntVar(&clientRetries, "retries", 3, "retries of a failed request")
	clientCmd.PersistentFlags().
		StringSliceVarP(&entityNames, "entities", "e", nil, "entity names to find (default all)")

	for _, c := range []*cobra.Command{clientAnnotateCmd, clientBenchCmd} {
		c.Flags().IntVarP(&batchSize, "batch-size", "b", 10, "texts per request")
	}
	clientAnnotateCmd.Flags().
		BoolVarP(&withRelationships, "relationships", "r", false, "also find relationships")
	clientAnnotateCmd.Flags().
		BoolVarP(&withProperties, "properties", "p", false, "also find properties")
	clientBenchCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "concurrent requests")
	clientBenchCmd.Flags().IntVar(&rounds, "rounds", 1, "passes over the file")
}

func newClient() *client.Client {
	return client.NewClient(apiURL, clientRetries, clientTimeout, client.WithAPIKey(apiKey))
}

// readTexts reads one text per non-empty line. In a .jsonl file each line is either a JSON
// string or an object with a "text" field.
func readTexts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	jsonl := strings.EqualFold(filepath.Ext(path), ".jsonl")
	var texts []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if !jsonl {
			texts = append(texts, raw)
			continue
		}
		text, err := decodeTextLine([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		texts = append(texts, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

func decodeTextLine(raw []byte) (string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var object struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &object); err != nil {
		return "", err
	}
	if object.Text == nil {
		return "", fmt.Errorf("missing \"text\" field")
	}
	return *object.Text, nil
}

func batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}

// percentile expects sorted latencies.
func percentile(latencies []time.Duration, p float64) time.Duration {
	i := int(float64(len(latencies)-1) * p)
	return latencies[i]
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

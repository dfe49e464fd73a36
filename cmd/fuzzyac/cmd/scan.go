package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xxxsen/fuzzyac/internal/automaton"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
	"github.com/xxxsen/fuzzyac/internal/document"
	"github.com/xxxsen/fuzzyac/internal/tagger"
)

const adhocDictName = "adhoc"

type scanOptions struct {
	dicts       []string
	keywords    []string
	distance    int
	concurrency int
	html        bool
}

var scanOpts = scanOptions{}

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Scan files (or stdin) for dictionary keywords",
	Long:  "Prints one JSON object per match. Keywords come from the configured dictionaries or from --keyword.",
	RunE:  runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringSliceVar(&scanOpts.dicts, "dict", nil, "dictionaries to scan with, default all")
	f.StringSliceVarP(&scanOpts.keywords, "keyword", "k", nil, "ad-hoc keywords, used instead of the configured dictionaries")
	f.IntVarP(&scanOpts.distance, "distance", "d", -1, "max edit distance, default per dictionary")
	f.IntVar(&scanOpts.concurrency, "concurrency", 0, "documents scanned in parallel")
	f.BoolVar(&scanOpts.html, "html", false, "treat stdin as html")
}

type scanRecord struct {
	File       string `json:"file"`
	Dictionary string `json:"dictionary"`
	automaton.Match
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		set         *dictionary.Set
		concurrency = scanOpts.concurrency
		err         error
	)
	if len(scanOpts.keywords) > 0 {
		set, err = adhocSet(ctx, scanOpts.keywords, max(scanOpts.distance, 0))
	} else {
		cfg, logkit, lerr := loadConfig()
		if lerr != nil {
			return lerr
		}
		defer logkit.Sync() //nolint:errcheck
		if concurrency == 0 {
			concurrency = cfg.Scan.Concurrency
		}
		set, _, err = buildDictionaries(ctx, cfg.Dictionaries)
	}
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args, cmd.InOrStdin(), scanOpts.html)
	if err != nil {
		return err
	}
	return scan(ctx, set, docs, scanOpts, concurrency, cmd.OutOrStdout())
}

func adhocSet(ctx context.Context, keywords []string, distance int) (*dictionary.Set, error) {
	d, err := dictionary.New(ctx, adhocDictName, distance, dictionary.NewInlineSource(adhocDictName, keywords))
	if err != nil {
		return nil, err
	}
	return dictionary.NewSet(d)
}

func loadDocuments(files []string, stdin io.Reader, html bool) ([]*document.Document, error) {
	if len(files) == 0 {
		doc, err := document.Read("-", stdin, html)
		if err != nil {
			return nil, err
		}
		return []*document.Document{doc}, nil
	}
	docs := make([]*document.Document, 0, len(files))
	for _, f := range files {
		doc, err := document.Load(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func scan(ctx context.Context, set *dictionary.Set, docs []*document.Document, o scanOptions, concurrency int, out io.Writer) error {
	var opts []tagger.Option
	if concurrency > 0 {
		opts = append(opts, tagger.WithConcurrency(concurrency))
	}
	if len(o.keywords) == 0 && len(o.dicts) > 0 {
		opts = append(opts, tagger.WithDictionaries(o.dicts...))
	}
	if o.distance >= 0 {
		opts = append(opts, tagger.WithMaxDistance(o.distance))
	}
	tg, err := tagger.New(set, opts...)
	if err != nil {
		return err
	}
	res, err := tg.Tag(ctx, docs)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, r := range res {
		for _, m := range r.Matches {
			if err := enc.Encode(&scanRecord{File: r.Document, Dictionary: r.Dictionary, Match: m}); err != nil {
				return fmt.Errorf("write match: %w", err)
			}
		}
	}
	return nil
}

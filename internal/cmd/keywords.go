package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type KeywordsCmd struct {
	Request string `arg:"" help:"Free-text description of the people to find."`
}

func (k *KeywordsCmd) Run(ctx *Context) error {
	request := strings.TrimSpace(k.Request)
	if request == "" {
		return fmt.Errorf("request must not be empty")
	}

	extractor, err := newKeywordExtractor(ctx)
	if err != nil {
		return err
	}
	terms := extractor.Extract(context.Background(), request)

	if ctx.JSONOutput {
		return json.NewEncoder(ctx.Out).Encode(terms)
	}
	for _, term := range terms {
		if _, err := fmt.Fprintln(ctx.Out, term); err != nil {
			return err
		}
	}
	return nil
}

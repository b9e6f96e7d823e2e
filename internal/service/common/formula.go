package common

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/jefftt/s3edit/internal/domain/formula"
	repository "github.com/jefftt/s3edit/internal/repository/formula"
)

// LoadFormula reads a formula from an http(s) URL or a local YAML file.
func LoadFormula(ctx context.Context, client *Client, source string) (*domain.Formula, error) {
	if !isRemote(source) {
		return repository.NewFileRepository(source).Load(ctx)
	}

	data, err := client.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch formula: %w", err)
	}

	return repository.Decode(data)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

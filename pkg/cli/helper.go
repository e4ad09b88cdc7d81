package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/infra"
	"github.com/glt-tools/glt/pkg/usecase"
)

// buildUseCase assembles the client container and verifies authentication
// before any batch work starts.
func buildUseCase(ctx context.Context, gitlabConfig *config.GitLab, cacheConfig *config.Cache, options ...infra.Option) (*usecase.UseCase, error) {
	client, err := gitlabConfig.NewClient(cacheConfig)
	if err != nil {
		return nil, err
	}

	clients := infra.New(append([]infra.Option{infra.WithGitLab(client)}, options...)...)
	uc := usecase.New(clients)

	if _, err := uc.VerifyAuth(ctx); err != nil {
		return nil, goerr.Wrap(err, "authentication check failed")
	}
	return uc, nil
}

// writeOutput writes data to path, or stdout when path is "-" or empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", path))
	}
	return nil
}

package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Source is a loaded base image together with its palette.
type Source struct {
	Image   *Indexed
	Palette Palette
}

// LoadSource fetches the matrix and palette documents in parallel and
// validates them against each other. Locations are file paths or http(s)
// URLs. Failure of either fetch cancels the other and no Source is returned.
func LoadSource(ctx context.Context, matrixLoc, paletteLoc string) (*Source, error) {
	var matrixData, paletteData []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := fetch(gctx, matrixLoc)
		if err != nil {
			return fmt.Errorf("failed to load matrix %s: %w", matrixLoc, err)
		}
		matrixData = data
		return nil
	})
	g.Go(func() error {
		data, err := fetch(gctx, paletteLoc)
		if err != nil {
			return fmt.Errorf("failed to load palette %s: %w", paletteLoc, err)
		}
		paletteData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return DecodeSource(matrixData, paletteData)
}

// DecodeSource parses already-fetched matrix and palette documents.
func DecodeSource(matrixData, paletteData []byte) (*Source, error) {
	pal, err := DecodePalette(paletteData)
	if err != nil {
		return nil, err
	}
	img, err := DecodeMatrix(matrixData, pal.Len())
	if err != nil {
		return nil, err
	}
	return &Source{Image: img, Palette: pal}, nil
}

func fetch(ctx context.Context, loc string) ([]byte, error) {
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(loc)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

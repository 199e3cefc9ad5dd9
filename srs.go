package aggregator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	kzgbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSRSTooSmall = errors.New("srs is smaller than the circuit needs")
	ErrSRSDownload = errors.New("srs download failed")
)

const srsCanonicalFile = "srs.canonical.bin"

func srsLagrangeFile(size int) string {
	return fmt.Sprintf("srs.lagrange.%d.bin", size)
}

// ReadSRS returns the canonical and Lagrange SRS sized for ccs.
//
// Both are read from cfg.SRSDir when cached. A missing canonical SRS is
// downloaded from cfg.SRSURL; without a URL an insecure development SRS is
// generated and nothing is cached. A missing Lagrange SRS is derived from the
// canonical one and cached.
func ReadSRS(ccs constraint.ConstraintSystem, cfg Config) (*kzgbls12381.SRS, *kzgbls12381.SRS, error) {
	log := logger.Logger().With().Str("component", "srs").Str("dir", cfg.SRSDir).Logger()
	sizec, sizel := plonk.SRSSize(ccs)

	pathc := filepath.Join(cfg.SRSDir, srsCanonicalFile)
	pathl := filepath.Join(cfg.SRSDir, srsLagrangeFile(sizel))
	var srsc, srsl *kzgbls12381.SRS
	var g errgroup.Group
	g.Go(func() (err error) {
		srsc, err = readSRSFile(pathc)
		return
	})
	g.Go(func() (err error) {
		srsl, err = readSRSFile(pathl)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if srsc == nil {
		if cfg.SRSURL == "" {
			log.Warn().Int("size", sizec).Msg("no srs cached and no srs url configured; generating an insecure srs")
			c, l, err := unsafekzg.NewSRS(ccs)
			if err != nil {
				return nil, nil, err
			}
			return c.(*kzgbls12381.SRS), l.(*kzgbls12381.SRS), nil
		}
		log.Info().Str("url", cfg.SRSURL).Msg("local srs cache not found; downloading ...")
		var err error
		if srsc, err = downloadSRS(cfg.SRSURL, pathc); err != nil {
			return nil, nil, err
		}
	}
	if len(srsc.Pk.G1) < sizec {
		return nil, nil, fmt.Errorf("%w: %d points, need %d", ErrSRSTooSmall, len(srsc.Pk.G1), sizec)
	}
	canonical := &kzgbls12381.SRS{Vk: srsc.Vk}
	canonical.Pk.G1 = srsc.Pk.G1[:sizec]

	if srsl == nil || len(srsl.Pk.G1) != sizel {
		log.Info().Int("size", sizel).Msg("local lagrange srs cache not found; generating ...")
		g1, err := kzgbls12381.ToLagrangeG1(srsc.Pk.G1[:sizel])
		if err != nil {
			return nil, nil, err
		}
		srsl = &kzgbls12381.SRS{Vk: srsc.Vk}
		srsl.Pk.G1 = g1
		if err := writeSRSFile(pathl, srsl); err != nil {
			return nil, nil, err
		}
	}
	return canonical, srsl, nil
}

// readSRSFile returns nil without error when the file does not exist.
func readSRSFile(path string) (*kzgbls12381.SRS, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	var srs kzgbls12381.SRS
	if _, err := srs.UnsafeReadFrom(f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &srs, nil
}

func writeSRSFile(path string, srs *kzgbls12381.SRS) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := srs.WriteRawTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func downloadSRS(url, path string) (*kzgbls12381.SRS, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSRSDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrSRSDownload, resp.Status)
	}
	var buf bytes.Buffer
	bar := progressbar.DefaultBytes(resp.ContentLength, "Downloading SRS")
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.Body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSRSDownload, err)
	}
	// the canonical file is checked once here and trusted from the cache after
	var srs kzgbls12381.SRS
	if _, err := srs.ReadFrom(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSRSDownload, err)
	}
	return &srs, writeSRSFile(path, &srs)
}

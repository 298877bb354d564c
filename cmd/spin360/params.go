package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/calvinmclean/spin360/catalog"
	"github.com/calvinmclean/spin360/catalog/yamlcatalog"
	"github.com/calvinmclean/spin360/config"
	"github.com/calvinmclean/spin360/param"
	"github.com/calvinmclean/spin360/store"
	"github.com/calvinmclean/spin360/store/remote"
)

// paramStore works on the params of a catalog persisted in a store, without the rig
type paramStore struct {
	catalog catalog.Catalog
	params  *param.Set
	store   store.Store
	logger  *slog.Logger
}

func openStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.StoreKind {
	case config.StoreKindFile:
		b, err := store.OpenFile(cfg.StorePath, cfg.StoreSize)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.StoreKindRemote:
		return remote.New(cfg.StoreAddr, cfg.StoreTimeout), func() error { return nil }, nil
	case config.StoreKindMemory:
		return store.NewMemory(cfg.StoreSize), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.StoreKind)
	}
}

func withParams(cfg *config.Config, f func(*paramStore) error) error {
	c, err := yamlcatalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}

	p, err := newParamStore(c, st, slog.Default())
	if err != nil {
		closeStore()
		return err
	}

	return errors.Join(f(p), closeStore())
}

// newParamStore builds the catalog's params and loads their stored values. A blank
// store leaves the catalog defaults in place.
func newParamStore(c catalog.Catalog, st store.Store, logger *slog.Logger) (*paramStore, error) {
	params, err := c.Build()
	if err != nil {
		return nil, err
	}

	blank, err := params.Blank(st)
	if err != nil {
		return nil, fmt.Errorf("error reading params: %w", err)
	}

	if blank {
		logger.Warn("store holds no params yet, using catalog defaults")
	} else {
		err = params.LoadAll(st)
		if err != nil {
			return nil, fmt.Errorf("error loading params: %w", err)
		}
	}

	return &paramStore{catalog: c, params: params, store: st, logger: logger}, nil
}

// Dump writes the current values as YAML
func (p *paramStore) Dump(w io.Writer) error {
	return yamlcatalog.Write(w, catalog.Snapshot(p.params))
}

// Set stores value for the named param. Values outside of the param's bounds are rejected.
func (p *paramStore) Set(name, value string) error {
	prm, ok := p.params.Get(name)
	if !ok {
		return fmt.Errorf("unknown param %q", name)
	}

	v, err := strconv.ParseInt(value, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", value, err)
	}

	err = prm.Set(int16(v))
	if err != nil {
		return err
	}

	err = prm.Persist(p.store)
	if err != nil {
		return err
	}

	p.logger.Info("stored param", "name", name, "value", prm.Value())
	return nil
}

// Reset stores the catalog default of every param
func (p *paramStore) Reset() error {
	defaults, err := p.catalog.Build()
	if err != nil {
		return err
	}

	err = defaults.PersistAll(p.store)
	if err != nil {
		return err
	}
	p.params = defaults

	p.logger.Info("reset params", "count", defaults.Len())
	return nil
}

package SchemaSpec

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec/config"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/db"
	"github.com/nickyhof/SchemaSpec/live"
	"github.com/nickyhof/SchemaSpec/ps"
	"github.com/nickyhof/SchemaSpec/spec"
)

type Instance struct {
	Persistence *ps.Persistence
	Options     db.Options

	live *live.Source
}

func Open(persistence *ps.Persistence, options db.Options) *Instance {
	return &Instance{
		Persistence: persistence,
		Options:     options,
	}
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Persistence, identity, instance.Options)
}

// Identity is the default commit identity from the configuration.
func Identity(cfg *config.Config) core.Identity {
	return core.Identity{Name: cfg.Identity.Name, Email: cfg.Identity.Email}
}

// OpenConfig opens the persistence, manifest and live database described
// by cfg. A missing manifest leaves the engine without builders.
func OpenConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Instance, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		persistence ps.Persistence
		err         error
	)
	if cfg.Persistence.BaseDir == "" {
		logger.Info("Using memory persistence")
		persistence, err = ps.NewMemoryPersistence()
	} else {
		logger.Info("Using file persistence", zap.String("baseDir", cfg.Persistence.BaseDir))
		var gitUrl *string
		if cfg.Persistence.GitURL != "" {
			gitUrl = &cfg.Persistence.GitURL
		}
		persistence, err = ps.NewFilePersistence(cfg.Persistence.BaseDir, gitUrl)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persistence: %w", err)
	}

	options := db.Options{
		Spec: cfg.SpecOptions(),
		S3: db.S3Config{
			Region:    cfg.Export.S3.Region,
			Endpoint:  cfg.Export.S3.Endpoint,
			AccessKey: cfg.Export.S3.AccessKey,
			SecretKey: cfg.Export.S3.SecretKey,
		},
		Logger: logger,
	}

	if cfg.Manifest != "" {
		manifest, err := spec.LoadManifest(cfg.Manifest)
		if err != nil {
			logger.Warn("No manifest loaded", zap.String("path", cfg.Manifest), zap.Error(err))
		} else {
			options.Loader = manifest.Registry()
		}
	}

	instance := Open(&persistence, options)

	if cfg.Live.Driver != "" {
		source, err := openLive(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		instance.live = source
		instance.Options.Live = source
	}

	return instance, nil
}

func openLive(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*live.Source, error) {
	source, err := live.Open(cfg.Live.Driver, cfg.Live.DSN, logger)
	if err != nil {
		return nil, err
	}
	source.SetNamespace(cfg.Storage.Namespace)
	source.SetMainName(cfg.Live.MainName)

	for name, path := range cfg.Live.Attach {
		if err := source.Attach(ctx, name, path); err != nil {
			source.Close()
			return nil, err
		}
	}
	return source, nil
}

// Close releases the live database connection, if any.
func (instance *Instance) Close() error {
	if instance.live == nil {
		return nil
	}
	return instance.live.Close()
}

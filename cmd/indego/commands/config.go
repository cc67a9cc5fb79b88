package commands

import (
	"fmt"

	"indego-backend/lib/blobstore"
	"indego-backend/lib/catalog"
	"indego-backend/lib/configutil"
	"indego-backend/lib/serviceutil"
	"indego-backend/services/pipeline"
)

type MinioConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
	// raw archives and processed partitions live in separate buckets
	RawBucket       string `json:"raw_bucket"`
	ProcessedBucket string `json:"processed_bucket"`
}

type Config struct {
	// "local" or "minio"
	Location string `json:"location"`
	// root directory for the local backend, holds both raw archives and
	// processed partitions
	DataDir string      `json:"data_dir"`
	Minio   MinioConfig `json:"minio"`
	// overrides the portal page url, mostly useful in development
	CatalogUrl string `json:"catalog_url"`
	// sqlite database holding the loaded indego_trips warehouse table
	WarehouseDb string `json:"warehouse_db"`
	Port        int    `json:"port"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Location == "" {
		cfg.Location = "local"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg
}

// the storage location is chosen once here and passed into the pipeline
// by reference, components never branch on it again.
func openStores(cfg Config) (raw blobstore.Store, processed blobstore.Store, err error) {
	switch cfg.Location {
	case "local":
		fs := blobstore.NewFilesystem(cfg.DataDir)
		return fs, fs, nil
	case "minio":
		raw, err := blobstore.NewMinio(blobstore.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Bucket:    cfg.Minio.RawBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		processed, err := blobstore.NewMinio(blobstore.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Bucket:    cfg.Minio.ProcessedBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return raw, processed, nil
	default:
		return nil, nil, fmt.Errorf("invalid location %q, use 'local' or 'minio'", cfg.Location)
	}
}

func newPipeline(cfg Config) pipeline.Pipeline {
	raw, processed, err := openStores(cfg)
	if err != nil {
		serviceutil.Fatal("failed to open storage", err)
	}
	return pipeline.New(pipeline.Options{
		Catalog:   catalog.New(catalog.Options{PageUrl: cfg.CatalogUrl}),
		Raw:       raw,
		Processed: processed,
	})
}

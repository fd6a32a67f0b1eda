// Copyright 2025 Ekatalog Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/client"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/config"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/repo"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/router"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/store"
	serverhttp "github.com/yudaprayogaIT/cms-adminEkatalog/internal/server/http"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/version"
)

var confDir string

var rootCmd = &cobra.Command{
	Use:   "ekatalog",
	Short: "Ekatalog catalog and membership admin backend",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the admin API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Materialize the bundled seed datasets into the store dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confDir, "conf", "./conf.d",
		"conf dir holding config.toml, e.g. --conf ./conf.d")
	rootCmd.AddCommand(serverCmd, seedCmd, version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer() error {
	appConf := config.NewConf(confDir)
	log.MustInit(&appConf.Log)

	st := store.NewFileStore(appConf.Store.Dir)
	members := repo.NewMemberRepo(st)
	collections := repo.NewCollectionRepo(st)

	app := serverhttp.NewApp(&appConf.Http)
	router.NewRouter(&appConf.Http, members, collections).Register(app)

	clean := serverhttp.Run(&appConf.Http, app)
	clean()
	return nil
}

// runSeed writes each bundled dataset into the store dir. Collections that
// already hold data are left alone.
func runSeed() error {
	appConf := config.NewConf(confDir)
	log.MustInit(&appConf.Log)

	st := store.NewFileStore(appConf.Store.Dir)
	ctx := context.Background()

	for _, dataset := range client.SeedDatasets() {
		var existing []map[string]any
		if err := st.Read(ctx, dataset, &existing); err != nil {
			return err
		}
		if len(existing) > 0 {
			log.Infow("collection already seeded, skipping", "collection", dataset)
			continue
		}

		raw, err := client.SeedData(dataset)
		if err != nil {
			return err
		}

		if dataset == model.CollectionMembers {
			// members ship nested, storage is flat
			var nested []model.UserMemberships
			if err := sonic.Unmarshal(raw, &nested); err != nil {
				return fmt.Errorf("seed %s: %w", dataset, err)
			}
			rows := make([]model.Membership, 0, len(nested))
			for i := range nested {
				rows = append(rows, nested[i].Flatten()...)
			}
			if err := st.Write(ctx, dataset, rows); err != nil {
				return err
			}
		} else {
			var records []map[string]any
			if err := sonic.Unmarshal(raw, &records); err != nil {
				return fmt.Errorf("seed %s: %w", dataset, err)
			}
			if err := st.Write(ctx, dataset, records); err != nil {
				return err
			}
		}

		log.Infow("collection seeded", "collection", dataset, "dir", appConf.Store.Dir)
	}
	return nil
}

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

package config

import (
	"fmt"
	"sync"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/client"
	serverhttp "github.com/yudaprayogaIT/cms-adminEkatalog/internal/server/http"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/conf"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

type AppConfig struct {
	Log    log.Conf
	Http   serverhttp.Http
	Store  Store
	Client client.Conf
}

type Store struct {
	Dir string
}

var (
	cfg  AppConfig
	once sync.Once
)

// NewConf loads config.toml from confDir once and keeps it hot-reloaded.
func NewConf(confDir string) AppConfig {
	once.Do(func() {
		if _, err := conf.LoadConfigFile(confDir, &cfg); err != nil {
			panic(fmt.Sprintf("load conf file error: %s", err))
		}
		cfg.Http.SetDefaults()
		cfg.Client.SetDefaults()
		if cfg.Store.Dir == "" {
			cfg.Store.Dir = "./data"
		}
	})
	return cfg
}

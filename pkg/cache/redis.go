// Copyright 2025 Lily Team
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

package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/trace"
	"github.com/redis/go-redis/v9"
)

// Redis holds the connection settings for the remote cache.
type Redis struct {
	Mode             string // single, sentinel or cluster
	Address          string // comma separated for sentinel and cluster
	Password         string
	DB               int
	PoolSize         int
	UseTLS           bool
	MasterName       string
	SentinelUsername string
	SentinelPassword string
	DialTimeout      int // seconds
	ReadTimeout      int // seconds
	WriteTimeout     int // seconds
	Trace            bool
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// NewRedisCmdable connects to Redis in the configured mode and pings it once.
// Only an unsupported mode is an error.
func NewRedisCmdable(cfg Redis) (redis.UniversalClient, error) {
	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	var client redis.UniversalClient
	switch cfg.Mode {
	case "", "single":
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			DialTimeout:  seconds(cfg.DialTimeout),
			ReadTimeout:  seconds(cfg.ReadTimeout),
			WriteTimeout: seconds(cfg.WriteTimeout),
			TLSConfig:    tlsConfig,
		})
	case "sentinel":
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.MasterName,
			SentinelAddrs:    splitAddrs(cfg.Address),
			Password:         cfg.Password,
			DB:               cfg.DB,
			PoolSize:         cfg.PoolSize,
			SentinelUsername: cfg.SentinelUsername,
			SentinelPassword: cfg.SentinelPassword,
			DialTimeout:      seconds(cfg.DialTimeout),
			ReadTimeout:      seconds(cfg.ReadTimeout),
			WriteTimeout:     seconds(cfg.WriteTimeout),
			TLSConfig:        tlsConfig,
		})
	case "cluster":
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        splitAddrs(cfg.Address),
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			DialTimeout:  seconds(cfg.DialTimeout),
			ReadTimeout:  seconds(cfg.ReadTimeout),
			WriteTimeout: seconds(cfg.WriteTimeout),
			TLSConfig:    tlsConfig,
		})
	default:
		return nil, fmt.Errorf("unsupported redis mode %q", cfg.Mode)
	}

	if cfg.Trace {
		client.AddHook(trace.RedisHook{})
	}

	// An unreachable server is not fatal: the client redials on demand and
	// the hybrid cache serves from the local layer meanwhile.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout(cfg))
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, starting with local cache only", "mode", cfg.Mode, "error", err)
		return client, nil
	}

	log.Infow("redis connected", "mode", cfg.Mode)
	return client, nil
}

func pingTimeout(cfg Redis) time.Duration {
	if cfg.DialTimeout > 0 {
		return seconds(cfg.DialTimeout)
	}
	return 5 * time.Second
}

func splitAddrs(address string) []string {
	parts := strings.Split(address, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Cliente is the read-only client snapshot served by the Client Directory.
// The directory owns the record; this service never writes it.
type Cliente struct {
	ID             string          `json:"id"`
	Nombre         string          `json:"nombre"`
	Estado         string          `json:"estado"` // activo | suspendido | desconectado
	Tarifa         decimal.Decimal `json:"tarifa"`
	MesesAdeudados int             `json:"meses_adeudados"`
	// UltimoMesPagado in "2006-01" format; empty when never paid.
	UltimoMesPagado string `json:"ultimo_mes_pagado"`
	TieneMora       bool   `json:"tiene_mora"`
}

// Plan is an installation plan from the Plan Catalog.
type Plan struct {
	ID         string          `json:"id"`
	Nombre     string          `json:"nombre"`
	PrecioBase decimal.Decimal `json:"precio_base"`
}

// DirectorioClientes is an HTTP client for the Client Directory / Plan
// Catalog sidecar. Lookups go through a circuit breaker so a directory outage
// fast-fails quoting without taking down session or movement operations, and
// successful reads are cached briefly in redis to absorb UI preview bursts.
type DirectorioClientes struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
	rdb        *redis.Client
}

const cacheClientesTTL = 30 * time.Second

func NewDirectorioClientes(baseURL string, cb *CircuitBreaker, rdb *redis.Client) *DirectorioClientes {
	return &DirectorioClientes{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
		rdb:        rdb,
	}
}

// Breaker exposes the circuit breaker for the health endpoint.
func (d *DirectorioClientes) Breaker() *CircuitBreaker { return d.cb }

// ObtenerCliente fetches a client's billing snapshot.
func (d *DirectorioClientes) ObtenerCliente(ctx context.Context, id string) (*Cliente, error) {
	var c Cliente
	if d.fromCache(ctx, "clientes:"+id, &c) {
		return &c, nil
	}
	if err := d.get(ctx, "/clientes/"+id, &c); err != nil {
		return nil, err
	}
	d.toCache(ctx, "clientes:"+id, &c)
	return &c, nil
}

// ObtenerPlan fetches an installation plan from the catalog.
func (d *DirectorioClientes) ObtenerPlan(ctx context.Context, id string) (*Plan, error) {
	var p Plan
	if d.fromCache(ctx, "planes:"+id, &p) {
		return &p, nil
	}
	if err := d.get(ctx, "/planes/"+id, &p); err != nil {
		return nil, err
	}
	d.toCache(ctx, "planes:"+id, &p)
	return &p, nil
}

func (d *DirectorioClientes) get(ctx context.Context, path string, out interface{}) error {
	return d.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("directorio: create request: %w", err)
		}
		resp, err := d.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("directorio: sidecar unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("directorio: sidecar returned %d for %s", resp.StatusCode, path)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("directorio: decode response: %w", err)
		}
		return nil
	})
}

// Cache helpers are best-effort: a redis hiccup never fails a lookup.

func (d *DirectorioClientes) fromCache(ctx context.Context, key string, out interface{}) bool {
	if d.rdb == nil {
		return false
	}
	raw, err := d.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (d *DirectorioClientes) toCache(ctx context.Context, key string, v interface{}) {
	if d.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.rdb.Set(ctx, key, raw, cacheClientesTTL).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("directorio: cache write failed")
	}
}

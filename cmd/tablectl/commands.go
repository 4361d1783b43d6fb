package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-cached-table/pkg/di"
	"github.com/goliatone/go-cached-table/site"
)

type command struct {
	site      *site.Site
	container *di.Container
	out       io.Writer
	addr      string
}

func (c *command) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command: set, get, delete, list, invalidate or serve")
	}

	name, rest := args[0], args[1:]
	switch name {
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: set <name> <value>")
		}
		return c.site.SetLocalConfig(ctx, rest[0], parseValue(rest[1]))
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: get <name>")
		}
		value, err := c.site.GetLocalConfig(ctx, rest[0])
		if err != nil {
			return err
		}
		return c.print(value)
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: delete <name>")
		}
		return c.site.DeleteConfig(ctx, rest[0])
	case "list":
		rows, err := c.site.ConfigTable().GetMany(ctx, nil)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := c.print(row); err != nil {
				return err
			}
		}
		return nil
	case "invalidate":
		return c.site.InvalidateWsCache(ctx)
	case "serve":
		return c.serve(ctx)
	}
	return fmt.Errorf("unknown command %q", name)
}

// parseValue decodes JSON scalars and documents, keeping anything else as a
// plain string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func (c *command) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// serve exposes the metrics collector until ctx is cancelled.
func (c *command) serve(ctx context.Context) error {
	collector := c.container.Metrics()
	if collector == nil {
		return errors.New("metrics are disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              c.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.container.Logger().InfoContext(ctx, "serving metrics", "addr", c.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

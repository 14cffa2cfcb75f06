package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	"github.com/urfave/cli/v3"
)

// API sends a request with the verb named by the subcommand and prints the response.
// Every call is recorded in the request log.
func (r *Runner) API(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	method := strings.ToUpper(cmd.Name)
	r.logger.Info("API request", "method", method, "path", path)

	resp, err := r.send(ctx, method, path, params)
	r.recordRequest(method, path, resp, err)
	if err != nil {
		return err
	}

	return formatter.WriteResponse(r.output, resp, cmd.Bool("pretty"))
}

func (r *Runner) send(ctx context.Context, method, path string, params url.Values) (soundcloud.Response, error) {
	switch method {
	case http.MethodGet:
		return r.client.Get(ctx, path, params)
	case http.MethodPost:
		return r.client.Post(ctx, path, params)
	case http.MethodPut:
		return r.client.Put(ctx, path, params)
	case http.MethodDelete:
		return r.client.Delete(ctx, path, params)
	case http.MethodHead:
		return r.client.Head(ctx, path, params)
	default:
		return nil, fmt.Errorf("%w: unsupported method %s", shared.ErrInvalidArgument, method)
	}
}

// recordRequest stores the outcome of a request. Failures to record are logged, not returned.
func (r *Runner) recordRequest(method, path string, resp soundcloud.Response, reqErr error) {
	if r.requests == nil {
		return
	}

	entry := models.NewRequestLog(0, method, path)
	entry.SetStatusCode(statusCode(resp, reqErr))
	if reqErr != nil {
		entry.SetErrorMessage(reqErr.Error())
	}
	if err := r.requests.Create(entry); err != nil {
		r.logger.Warn("failed to record request", "error", err)
	}
}

func statusCode(resp soundcloud.Response, err error) int {
	var respErr *soundcloud.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	if err != nil {
		return 0
	}
	if raw, ok := resp.(*soundcloud.RawResponse); ok && raw.StatusCode != 0 {
		return raw.StatusCode
	}
	return http.StatusOK
}

// parseParams turns key=value pairs into request parameters. Repeated keys are kept in order.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", shared.ErrInvalidArgument, pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

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

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/retry"
)

// Remote is the authoritative tier, talking to the admin API with a bounded
// timeout and retrying transient failures with backoff.
type Remote struct {
	http        *resty.Client
	contextPath string
	retryMax    int
}

func NewRemote(conf Conf) *Remote {
	cli := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(time.Duration(conf.Timeout) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Remote{
		http:        cli,
		contextPath: conf.ContextPath,
		retryMax:    conf.RetryMax,
	}
}

func (r *Remote) Name() Origin {
	return OriginRemote
}

func (r *Remote) path(dataset string) string {
	return r.contextPath + "/" + dataset
}

// envelope is the server's unified response shape.
type envelope struct {
	Code   int     `json:"code"`
	Msg    string  `json:"msg"`
	Detail Records `json:"detail"`
}

type errEnvelope struct {
	Code   int    `json:"code"`
	ErrMsg string `json:"errMsg"`
}

func (r *Remote) Load(ctx context.Context, dataset string) (Records, error) {
	var records Records
	err := retry.Do(ctx, func(ctx context.Context) error {
		resp, err := r.http.R().SetContext(ctx).Get(r.path(dataset))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return remoteError(resp)
		}

		var env envelope
		if err := sonic.Unmarshal(resp.Body(), &env); err != nil {
			return fmt.Errorf("decode %s: %w", dataset, err)
		}
		records = env.Detail
		if records == nil {
			records = Records{}
		}
		return nil
	},
		retry.WithMaxAttempts(r.retryMax),
		retry.WithBackoff(retry.Exponential(200*time.Millisecond, 2*time.Second)),
		retry.WithJitter(retry.FullJitter),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Apply sends a mutation. No retry: mutations are not known to be
// idempotent, the caller decides how to recover.
func (r *Remote) Apply(ctx context.Context, dataset string, op Op) error {
	req := r.http.R().SetContext(ctx)

	var (
		resp *resty.Response
		err  error
	)
	switch op.Kind {
	case OpCreate:
		resp, err = req.SetBody(op.Record).Post(r.path(dataset))
	case OpUpdate:
		resp, err = req.SetBody(op.Record).Put(fmt.Sprintf("%s/%d", r.path(dataset), op.ID))
	case OpDelete:
		resp, err = req.Delete(fmt.Sprintf("%s/%d", r.path(dataset), op.ID))
	case OpAction:
		resp, err = req.SetBody(op.Action).Post(r.path(model.CollectionMembers) + "/action")
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
	if err != nil {
		return err
	}
	if resp.IsError() {
		return remoteError(resp)
	}
	return nil
}

// remoteError surfaces the server's errMsg when the body carries one.
func remoteError(resp *resty.Response) error {
	var env errEnvelope
	if err := sonic.Unmarshal(resp.Body(), &env); err == nil && env.ErrMsg != "" {
		return fmt.Errorf("remote %d: %s", resp.StatusCode(), env.ErrMsg)
	}
	return fmt.Errorf("remote status %d", resp.StatusCode())
}

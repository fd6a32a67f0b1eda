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
	"errors"
	"strings"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
)

// ErrReasonRequired keeps the confirmation dialog open: nothing was sent.
var ErrReasonRequired = errors.New("reject reason is required")

// Notifier surfaces transient outcome messages to the operator.
type Notifier interface {
	Notify(level, msg string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}

// Confirmation is one confirmed approval dialog.
type Confirmation struct {
	Action       string
	UserID       int64
	BranchID     *int64
	CompanyName  *string
	AdminID      int64
	RejectReason *string
}

// Workflow sequences the approve/reject confirmation. Actions go through the
// client's non-optimistic path: a remote failure leaves local state
// untouched and only produces a notification.
type Workflow struct {
	client   *Client
	notifier Notifier
}

func NewWorkflow(c *Client, n Notifier) *Workflow {
	if n == nil {
		n = NopNotifier{}
	}
	return &Workflow{client: c, notifier: n}
}

func (w *Workflow) Confirm(ctx context.Context, conf Confirmation) error {
	if conf.Action == model.ActionReject &&
		(conf.RejectReason == nil || strings.TrimSpace(*conf.RejectReason) == "") {
		return ErrReasonRequired
	}

	op := Op{
		Kind: OpAction,
		Action: &model.MemberActionReq{
			Action:       conf.Action,
			UserID:       conf.UserID,
			BranchID:     conf.BranchID,
			CompanyName:  conf.CompanyName,
			AdminID:      conf.AdminID,
			RejectReason: conf.RejectReason,
		},
	}

	if err := w.client.Mutate(ctx, model.CollectionMembers, op); err != nil {
		w.notifier.Notify("error", "action failed: "+err.Error())
		return err
	}

	w.notifier.Notify("success", "member "+conf.Action+" applied")
	return nil
}

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

// Package router registers the admin API routes on a fiber app.
package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/repo"
	serverhttp "github.com/yudaprayogaIT/cms-adminEkatalog/internal/server/http"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/httpx"
)

type Router struct {
	Http        *serverhttp.Http
	Members     repo.IMemberRepository
	Collections repo.ICollectionRepository
}

func NewRouter(cfg *serverhttp.Http, members repo.IMemberRepository, collections repo.ICollectionRepository) *Router {
	return &Router{
		Http:        cfg,
		Members:     members,
		Collections: collections,
	}
}

// Register mounts the API under the configured context path. Member routes
// go first so the collection wildcard never shadows them.
func (rt *Router) Register(app *fiber.App) {
	api := app.Group(rt.Http.ContextPath)
	{
		rt.memberRouter(api)
		rt.collectionRouter(api)
	}

	app.Use(func(c *fiber.Ctx) error {
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound,
			httpx.NotFound.Code, "request path not found", c.Path())
	})
}

// withRepDomainErr maps a repository error onto the envelope and status.
func withRepDomainErr(c *fiber.Ctx, err error) error {
	var ve *repo.ValidationError
	if errors.As(err, &ve) {
		code := httpx.BadRequest
		switch ve.Field {
		case "user_id":
			code = httpx.UserIdIsEmpty
		case "branch_id":
			code = httpx.BranchSelectionRequired
		case "reject_reason":
			code = httpx.RejectReasonRequired
		case "action":
			code = httpx.InvalidAction
		}
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest, code.Code, ve.Error(), c.Path())
	}

	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound,
			httpx.UserNotExist.Code, httpx.UserNotExist.Msg, c.Path())
	case errors.Is(err, repo.ErrMembershipNotFound):
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound,
			httpx.MembershipNotExist.Code, httpx.MembershipNotExist.Msg, c.Path())
	case errors.Is(err, repo.ErrRecordNotFound):
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound,
			httpx.RecordNotExist.Code, httpx.RecordNotExist.Msg, c.Path())
	case errors.Is(err, repo.ErrUnknownCollection):
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound,
			httpx.CollectionUnknown.Code, httpx.CollectionUnknown.Msg, c.Path())
	default:
		return httpx.WithRepErrMsg(c, fiber.StatusInternalServerError,
			httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
}

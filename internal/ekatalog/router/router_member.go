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

package router

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/httpx"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

func (rt *Router) memberRouter(r fiber.Router) {
	group := r.Group("/members")
	{
		group.Get("/", rt.listMembersNested)   // GET /members - nested user-with-companies view
		group.Get("/flat", rt.listMembersFlat) // GET /members/flat - flat entries with user refs
		group.Post("/", rt.upsertMember)       // POST /members - create or merge memberships
		group.Post("/action", rt.memberAction) // POST /members/action - approve or reject
		group.Delete("/", rt.deleteMember)     // DELETE /members - remove by branch or all
	}
}

func (rt *Router) listMembersNested(c *fiber.Ctx) error {
	nested, err := rt.Members.ListNested(c.UserContext())
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, nested)
}

func (rt *Router) listMembersFlat(c *fiber.Ctx) error {
	entries, err := rt.Members.List(c.UserContext())
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, entries)
}

// upsertMember also accepts an action body and delegates it, so legacy
// clients that post everything to /members keep working.
func (rt *Router) upsertMember(c *fiber.Ctx) error {
	var probe struct {
		Action string `json:"action"`
	}
	if err := sonic.Unmarshal(c.Body(), &probe); err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if probe.Action != "" {
		return rt.memberAction(c)
	}

	var req model.MemberUpsertReq
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	nested, err := rt.Members.Upsert(c.UserContext(), &req)
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, nested)
}

func (rt *Router) memberAction(c *fiber.Ctx) error {
	var req model.MemberActionReq
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	row, err := rt.Members.Transition(c.UserContext(), &req)
	if err != nil {
		log.Warnw("membership action rejected",
			"action", req.Action, "user_id", req.UserID, "error", err)
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, row)
}

func (rt *Router) deleteMember(c *fiber.Ctx) error {
	var req model.MemberDeleteReq
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	if err := rt.Members.Delete(c.UserContext(), &req); err != nil {
		return withRepDomainErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

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
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/repo"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/httpx"
)

func (rt *Router) collectionRouter(r fiber.Router) {
	r.Get("/:collection", rt.listCollection)      // GET /:collection - list records
	r.Post("/:collection", rt.createRecord)       // POST /:collection - create with next id
	r.Put("/:collection/:id", rt.updateRecord)    // PUT /:collection/:id - merge by id
	r.Delete("/:collection/:id", rt.deleteRecord) // DELETE /:collection/:id - remove by id
}

func (rt *Router) listCollection(c *fiber.Ctx) error {
	records, err := rt.Collections.List(c.UserContext(), c.Params("collection"))
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, records)
}

func (rt *Router) createRecord(c *fiber.Ctx) error {
	var rec repo.Record
	if err := sonic.Unmarshal(c.Body(), &rec); err != nil || rec == nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	created, err := rt.Collections.Create(c.UserContext(), c.Params("collection"), rec)
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, created)
}

func (rt *Router) updateRecord(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.BadRequest.Code, "record id must be numeric", c.Path())
	}

	var patch repo.Record
	if err := sonic.Unmarshal(c.Body(), &patch); err != nil || patch == nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.RequestParameterParsingFailed.Code,
			httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	updated, err := rt.Collections.UpdateByID(c.UserContext(), c.Params("collection"), id, patch)
	if err != nil {
		return withRepDomainErr(c, err)
	}
	return httpx.WithRepJSON(c, updated)
}

func (rt *Router) deleteRecord(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.WithRepErrMsg(c, fiber.StatusBadRequest,
			httpx.BadRequest.Code, "record id must be numeric", c.Path())
	}

	if err := rt.Collections.DeleteByID(c.UserContext(), c.Params("collection"), id); err != nil {
		return withRepDomainErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

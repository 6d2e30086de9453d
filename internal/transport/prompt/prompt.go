package prompt

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"
	"github.com/alanyang/iobos/internal/transport/authn"
	"github.com/alanyang/iobos/internal/transport/respond"
)

const patchKey = "iobos.patch"

// Register mounts the agent prompt REST endpoints on the given router group.
// [SRP] HTTP handler only; calls promptSvc for all business logic.
// On PUT the body is validated before the credential so malformed bodies never
// reveal anything about authorization.
func Register(rg *gin.RouterGroup, svc *promptsvc.Service, v authn.Verifier) {
	authenticate := authn.Authenticate(v)

	rg.GET("", authenticate, listPrompts(svc))
	rg.GET("/:id", authenticate, getPrompt(svc))
	rg.PUT("/:id", bindPatch(), authenticate, updatePrompt(svc))
}

func listPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := authn.Claims(c)

		doc, err := svc.ReadAll(c.Request.Context(), claims)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func getPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := authn.Claims(c)

		r, err := svc.ReadOne(c.Request.Context(), claims, domainprompt.AgentID(c.Param("id")))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// bindPatch decodes the body strictly: unknown fields, trailing data and
// patches that set nothing are all rejected.
func bindPatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch domainprompt.Patch
		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&patch); err != nil || dec.More() || patch.Empty() {
			respond.Error(c, domainprompt.ErrBadRequest)
			return
		}
		c.Set(patchKey, patch)
		c.Next()
	}
}

func updatePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := authn.Claims(c)
		patch := c.MustGet(patchKey).(domainprompt.Patch)

		r, err := svc.UpdateOne(c.Request.Context(), claims, domainprompt.AgentID(c.Param("id")), patch)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

package participant

import (
	"errors"
	"sort"
	"time"

	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/constants"
	apperrors "github.com/akeren/participant-console/pkg/errors"
	"github.com/akeren/participant-console/pkg/factory"
)

const mutationKeyPrefix = "console:mutations:"

// NewParticipantController exposes the console state under /v1/console. Every
// response carries the snapshot as data and the banner text as message.
func NewParticipantController(
	service ParticipantService,
	logger *log.Logger,
	cache factory.Cache,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"ParticipantConsoleController",
		"v1",
		"/console",
		func(rs *router.RouterService, c *router.RESTController) {
			mutationLimiter := factory.NewDefaultRateLimiterFactory(
				constants.ConsoleMutationRequestsPerMinute,
				time.Minute,
				mutationKeyPrefix,
				cache,
				logger,
			).CreateRateLimiter()

			rs.AddGetHandler(c, nil, "", snapshotHandler(service))
			rs.AddPostHandler(c, nil, "/refresh", refreshHandler(service))
			rs.AddPutHandler(c, nil, "/draft", replaceDraftHandler(service))
			rs.AddPatchHandler(c, nil, "/draft", patchDraftHandler(service))
			rs.AddPostHandler(c, mutationLimiter, "/submit", submitHandler(service))
			rs.AddPostHandler(c, nil, "/cancel", cancelHandler(service))
			rs.AddPostHandler(c, nil, "/edit/:id", editHandler(service))
			rs.AddGetHandler(c, nil, "/lookup", lookupHandler(service))
			rs.AddDeleteHandler(c, mutationLimiter, "/participants/:id", deleteHandler(service))
		},
	)
}

func snapshotResult(service ParticipantService, fallback string) *router.ServiceResult {
	snapshot := service.Snapshot()

	message := snapshot.Banner.Text
	if message == "" {
		message = fallback
	}

	return router.OKResult(snapshot, message)
}

// errorSnapshotResult keeps the state in the payload so a client can redraw after a failure.
func errorSnapshotResult(service ParticipantService, err error) *router.ServiceResult {
	snapshot := service.Snapshot()

	message := snapshot.Banner.Text
	if message == "" || !snapshot.Banner.IsError() {
		message = apperrors.GetHumanReadableMessage(err)
	}

	return router.ErrorResult(apperrors.HTTPStatusCode(err), message, snapshot)
}

func snapshotHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return snapshotResult(service, "Console state retrieved successfully")
	}
}

func refreshHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		if err := service.Refresh(ctx.Request.Context()); err != nil {
			return errorSnapshotResult(service, err)
		}

		return snapshotResult(service, "Participants refreshed successfully")
	}
}

func replaceDraftHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var fields map[string]string

		if err := ctx.ShouldBindJSON(&fields); err != nil {
			logger.Error("Failed to bind draft", "error", err)
			return router.BadRequestResult("Invalid request body", nil)
		}

		if unknown := unknownFields(fields); len(unknown) > 0 {
			logger.Info("Rejected unknown draft fields", "fields", unknown)
			return router.BadRequestResult("Unknown draft fields", unknown)
		}

		// Keys left out of the body clear the matching field.
		var draft Draft
		for name, value := range fields {
			if err := draft.Set(name, value); err != nil {
				return router.ResultForError(err, nil)
			}
		}

		service.SetDraft(draft)

		return snapshotResult(service, "Draft updated")
	}
}

func patchDraftHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req PatchDraftRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		if unknown := unknownFields(req.Fields); len(unknown) > 0 {
			logger.Info("Rejected unknown draft fields", "fields", unknown)
			return router.BadRequestResult("Unknown draft fields", unknown)
		}

		for _, name := range DraftFields {
			value, ok := req.Fields[name]
			if !ok {
				continue
			}
			if err := service.SetField(name, value); err != nil {
				return router.ResultForError(err, nil)
			}
		}

		return snapshotResult(service, "Draft updated")
	}
}

func unknownFields(fields map[string]string) []string {
	var unknown []string
	for name := range fields {
		if _, ok := (Draft{}).Get(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func submitHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		if err := service.Submit(ctx.Request.Context()); err != nil {
			return errorSnapshotResult(service, err)
		}

		return snapshotResult(service, "Participant saved")
	}
}

func cancelHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		service.Cancel()
		return snapshotResult(service, "Draft cleared")
	}
}

func editHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.Edit(id); err != nil {
			if errors.Is(err, ErrParticipantNotCached) {
				return router.ErrorResult(apperrors.StatusNotFound, MsgNotFound, service.Snapshot())
			}
			return router.ResultForError(err, nil)
		}

		return snapshotResult(service, "")
	}
}

func lookupHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		if err := service.FetchByID(ctx.Request.Context(), ctx.Query("id")); err != nil {
			return errorSnapshotResult(service, err)
		}

		return snapshotResult(service, "Lookup completed")
	}
}

func deleteHandler(service ParticipantService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.Delete(ctx.Request.Context(), id); err != nil {
			return errorSnapshotResult(service, err)
		}

		return snapshotResult(service, "Participant deleted")
	}
}

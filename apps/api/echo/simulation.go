package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type simulationApi struct {
	svc        *simulation.Service
	issuer     *simulation.Issuer
	blobs      core.BlobStore
	validate   *validator.Validate
	translator ut.Translator
}

func registerSimulationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *simulation.Service,
	issuer *simulation.Issuer,
	blobs core.BlobStore,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := simulationApi{
		svc:        svc,
		issuer:     issuer,
		blobs:      blobs,
		validate:   validate,
		translator: translator,
	}

	sg := g.Group("/simulations/:id", jwt)
	sg.POST("/tasks/:taskID/submissions", api.submit)
	sg.POST("/completion", api.complete)
	sg.GET("/progress", api.progress)
	sg.GET("/certificate", api.certificate)
}

// Handlers

func (api *simulationApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	simID := ctx.Param("id")
	taskID := ctx.Param("taskID")

	payload, err := api.extractPayload(ctx, claims.Subject, taskID)
	if err != nil {
		return err
	}

	res, err := api.svc.SubmitTask(ctx.Request().Context(), claims.Subject, simID, taskID, payload)
	if err != nil {
		return errors.Wrap(err, "submitting task")
	}

	return ctx.JSON(http.StatusOK, SubmitResponse{
		Success:     true,
		Submission:  res.Submission,
		ScoreResult: res.ScoreResult,
		Progress:    res.Progress,
		Certificate: res.Certificate,
	})
}

// extractPayload pulls the submission payload out of the request: a JSON
// body for free-form and multiple-choice tasks, or an uploaded file stored
// through the blob store and submitted as its URL.
func (api *simulationApi) extractPayload(ctx echo.Context, learnerID, taskID string) (json.RawMessage, error) {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return api.storeUpload(ctx, learnerID, taskID)
	}

	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return nil, errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return nil, err
	}
	return data.Payload, nil
}

func (api *simulationApi) storeUpload(ctx echo.Context, learnerID, taskID string) (json.RawMessage, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	key := fmt.Sprintf("submissions/%s/%s/%s%s", learnerID, taskID, uuid.New().String(), path.Ext(fh.Filename))
	url, err := api.blobs.Save(ctx.Request().Context(), key, f)
	if err != nil {
		return nil, errors.Wrap(err, "storing uploaded file")
	}

	payload, err := json.Marshal(echo.Map{"file_url": url, "file_name": fh.Filename})
	if err != nil {
		return nil, errors.Wrap(err, "encoding file payload")
	}
	return payload, nil
}

func (api *simulationApi) complete(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	cert, err := api.issuer.CompleteSimulation(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing simulation")
	}

	return ctx.JSON(http.StatusOK, CompleteResponse{Success: true, Certificate: cert})
}

func (api *simulationApi) progress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prog, err := api.svc.ComputeProgress(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}

	return ctx.JSON(http.StatusOK, prog)
}

func (api *simulationApi) certificate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	cert, err := api.issuer.GetCertificate(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding certificate")
	}

	return ctx.JSON(http.StatusOK, cert)
}

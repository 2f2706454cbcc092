package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"sort"

	"github.com/gofiber/fiber/v2"

	"csvstats/internal/service"
)

// uploadFormField is read first; parts under any other field name follow in name order.
const uploadFormField = "files"

type uploadResponse struct {
	Message  string              `json:"message"`
	Uploaded []string            `json:"uploaded"`
	Errors   []service.FileError `json:"errors,omitempty"`
}

// UploadFiles godoc
// @Summary Upload CSV files
// @Description Each file is stored independently. A file replaces any dataset previously uploaded under the same name.
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "CSV files with header Date;ExecutionTime;Value"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} uploadResponse
// @Router /upload [post]
func UploadFiles(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		headers := formFiles(form)
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		files := make([]service.UploadFile, 0, len(headers))
		for _, fh := range headers {
			content, err := readFormFile(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			files = append(files, service.UploadFile{Name: fh.Filename, Content: content})
		}

		res := svc.Ingest(c.UserContext(), files)
		if res.Failed() {
			return c.Status(fiber.StatusBadRequest).JSON(uploadResponse{
				Message:  "some files were rejected",
				Uploaded: res.Uploaded,
				Errors:   res.Errors,
			})
		}
		return c.JSON(uploadResponse{
			Message:  "files uploaded successfully",
			Uploaded: res.Uploaded,
		})
	}
}

func formFiles(form *multipart.Form) []*multipart.FileHeader {
	fields := make([]string, 0, len(form.File))
	for name := range form.File {
		if name != uploadFormField {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)

	out := append([]*multipart.FileHeader(nil), form.File[uploadFormField]...)
	for _, name := range fields {
		out = append(out, form.File[name]...)
	}
	return out
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// LastRecords godoc
// @Summary Latest records of a dataset
// @Description Returns up to 10 records ordered by date, newest first.
// @Tags datasets
// @Produce json
// @Param filename path string true "Uploaded file name"
// @Success 200 {array} model.Record
// @Failure 404 {object} errorPayload
// @Router /lastRecords/{filename} [get]
func LastRecords(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.LastRecords(c.UserContext(), c.Params("filename"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(records)
	}
}

// ResultFilter godoc
// @Summary Filter dataset summaries
// @Description All bounds are optional and inclusive. minStart/maxStart bound the earliest record date.
// @Tags datasets
// @Produce json
// @Param filename query string false "Exact file name"
// @Param minStart query string false "Lower bound on minDate (RFC3339 or YYYY-MM-DD)"
// @Param maxStart query string false "Upper bound on minDate (RFC3339 or YYYY-MM-DD)"
// @Param minAvgValue query number false "Lower bound on avgValue"
// @Param maxAvgValue query number false "Upper bound on avgValue"
// @Param minAvgExecutionTime query number false "Lower bound on avgExecutionTime"
// @Param maxAvgExecutionTime query number false "Upper bound on avgExecutionTime"
// @Success 200 {array} model.Summary
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /resultFilter [get]
func ResultFilter(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseSummaryFilter(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", err.Error())
		}

		items, err := svc.Summaries(c.UserContext(), f)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(items)
	}
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no matching records")
	case errors.Is(err, service.ErrFileNameRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "file name is required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

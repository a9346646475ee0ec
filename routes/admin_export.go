package routes

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"sync"
	"time"

	"veever-server/services"

	"github.com/kataras/iris/v12"
)

type exportJob struct {
	ID        string `json:"id"`
	Status    string `json:"status"` // pending, processing, done, failed
	CreatedAt int64  `json:"created_at"`
	Error     string `json:"error,omitempty"`

	csvData []byte
}

var (
	exportJobs   = map[string]*exportJob{}
	exportJobsMu sync.Mutex
)

// POST /api/admin/export — builds the experience CSV asynchronously.
func AdminCreateExport(ctx iris.Context) {
	id := time.Now().Format("20060102150405.000000")
	job := &exportJob{ID: id, Status: "pending", CreatedAt: time.Now().Unix()}
	exportJobsMu.Lock()
	exportJobs[id] = job
	exportJobsMu.Unlock()

	go func(j *exportJob) {
		exportJobsMu.Lock()
		j.Status = "processing"
		exportJobsMu.Unlock()

		rows, err := services.NewExperienceService().ExportRows()

		exportJobsMu.Lock()
		defer exportJobsMu.Unlock()
		if err != nil {
			j.Status = "failed"
			j.Error = err.Error()
			return
		}

		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		writer.WriteAll(rows)
		if err := writer.Error(); err != nil {
			j.Status = "failed"
			j.Error = err.Error()
			return
		}
		j.csvData = buf.Bytes()
		j.Status = "done"
	}(job)

	ctx.JSON(iris.Map{"data": iris.Map{"id": id, "status": job.Status}})
}

// GET /api/admin/export/:id
func AdminGetExport(ctx iris.Context) {
	id := ctx.Params().GetString("id")
	exportJobsMu.Lock()
	job, ok := exportJobs[id]
	exportJobsMu.Unlock()
	if !ok {
		ctx.StatusCode(http.StatusNotFound)
		ctx.JSON(iris.Map{"error": "not_found", "message": "job not found"})
		return
	}
	ctx.JSON(iris.Map{"data": job})
}

// GET /api/admin/export/:id/download
func AdminDownloadExport(ctx iris.Context) {
	id := ctx.Params().GetString("id")
	exportJobsMu.Lock()
	job, ok := exportJobs[id]
	var data []byte
	var status string
	if ok {
		data = job.csvData
		status = job.Status
	}
	exportJobsMu.Unlock()

	if !ok {
		ctx.StatusCode(http.StatusNotFound)
		ctx.JSON(iris.Map{"error": "not_found", "message": "job not found"})
		return
	}
	if status != "done" {
		ctx.StatusCode(http.StatusConflict)
		ctx.JSON(iris.Map{"error": "not_ready", "message": "export is " + status})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename=veever-experiences.csv")
	ctx.ContentType("text/csv")
	ctx.Write(data)
}

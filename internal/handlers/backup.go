package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/backup"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
)

// BackupHandler exports the persisted store while serving. Import runs
// through the CLI only, since it has to replace files under live stores.
type BackupHandler struct {
	DataDir string
}

func (h *BackupHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "backup.export")

	var req struct {
		DestDir string `json:"dest_dir"`
	}
	if err := c.Bind(&req); err != nil || req.DestDir == "" {
		l.Error("backup_export_failed", "status", 400, "reason", "dest_dir required")
		return echo.NewHTTPError(http.StatusBadRequest, "dest_dir required")
	}

	if err := backup.Export(h.DataDir, req.DestDir); err != nil {
		l.Error("backup_export_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot export backup")
	}

	l.Info("backup_export_success", "dest", req.DestDir)
	return c.JSON(http.StatusOK, map[string]string{"dest_dir": req.DestDir})
}

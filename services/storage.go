package services

import "github.com/onmax/lingai/utils"

// Seam cho test thay storage thật bằng stub
var (
	UploadBytes   = utils.UploadBytesToSupabase
	DownloadBytes = utils.DownloadFromSupabase
	DeleteBytes   = utils.DeleteFileFromSupabase
)

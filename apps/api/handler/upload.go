package handler

import (
	"fmt"
	"log"
	"net/http"

	"whitelight-store/pkg/response"
	"whitelight-store/pkg/storage"

	"github.com/gin-gonic/gin"
)

// UploadImages POST /api/products/images
//
// 独立上传接口：前端先把图传上来拿 URL，再在创建/更新商品时作为
// 预上传 URL 传回。逐个顺序上传，每个文件一条结构化结果，单个失败
// 不影响其他文件
func (h *Handler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "multipart form with images is required")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		response.Fail(c, http.StatusBadRequest, "at least one image file is required")
		return
	}
	if len(files) > maxImageFiles {
		response.Fail(c, http.StatusBadRequest, fmt.Sprintf("at most %d images per request", maxImageFiles))
		return
	}

	results := make([]storage.UploadResult, 0, len(files))
	var urls []string
	for _, fh := range files {
		if fh.Size > maxImageSize {
			results = append(results, storage.UploadResult{Success: false, Error: "file exceeds 10MB limit"})
			continue
		}
		file, err := fh.Open()
		if err != nil {
			results = append(results, storage.UploadResult{Success: false, Error: err.Error()})
			continue
		}
		res := h.storage.Upload(c.Request.Context(), file, fh.Size, fh.Header.Get("Content-Type"), imageFolder, fh.Filename)
		file.Close()
		if !res.Success {
			log.Printf("WARN: standalone upload failed file=%s: %s", fh.Filename, res.Error)
		} else {
			urls = append(urls, res.URL)
		}
		results = append(results, res)
	}

	response.OK(c, "", gin.H{
		"urls":    urls,
		"results": results,
	})
}

package utils

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

func bucket() string {
	b := os.Getenv("SUPABASE_BUCKET")
	if b == "" {
		b = "lingai"
	}
	return b
}

func newStorageClient() *storage.Client {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	return storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)
}

// UploadBytesToSupabase đẩy dữ liệu bytes (mp3, png, md) lên Supabase Storage.
// Trả về chính objectPath để lưu vào DB làm key. Client luôn đi qua
// /api/audio, /api/images, /api/recap chứ không cầm public URL trực tiếp.
func UploadBytesToSupabase(data []byte, objectPath string, contentType string) (string, error) {
	storageClient := newStorageClient()

	buf := bytes.NewBuffer(data)
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      boolPtr(true), // retry ghi đè key cũ
	}

	if _, err := storageClient.UploadFile(bucket(), objectPath, buf, options); err != nil {
		return "", fmt.Errorf("upload %s thất bại: %w", objectPath, err)
	}
	return objectPath, nil
}

// DownloadFromSupabase tải object về theo key (dùng cho các route stream blob)
func DownloadFromSupabase(objectPath string) ([]byte, error) {
	storageClient := newStorageClient()

	data, err := storageClient.DownloadFile(bucket(), objectPath)
	if err != nil {
		return nil, fmt.Errorf("download %s thất bại: %w", objectPath, err)
	}
	return data, nil
}

// DeleteFileFromSupabase xóa object theo key (bỏ qua key rỗng)
func DeleteFileFromSupabase(objectPath string) error {
	if strings.TrimSpace(objectPath) == "" {
		return nil
	}

	storageClient := newStorageClient()
	if _, err := storageClient.RemoveFile(bucket(), []string{objectPath}); err != nil {
		return fmt.Errorf("xóa %s thất bại: %w", objectPath, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

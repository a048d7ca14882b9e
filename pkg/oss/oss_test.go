package oss

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestUploadFile_Mock(t *testing.T) {
	// 创建本地测试服务器
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 检查请求方法
		if r.Method != "POST" {
			t.Errorf("请求方法错误: %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("解析上传表单失败: %v", err)
		}
		// 返回模拟的下载链接
		w.Write([]byte("http://mockurl/stock_snapshots_20250801.xlsx"))
	}))
	defer ts.Close()

	// 造一个临时文件当作导出产物
	filePath := filepath.Join(t.TempDir(), "stock_snapshots_20250801.xlsx")
	if err := os.WriteFile(filePath, []byte("excel-bytes"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	ossInfo := &OssInfo{
		Url:     ts.URL, // 指向本地测试服务器
		Timeout: 5,
	}

	url, err := UploadFile(filePath, filepath.Base(filePath), ossInfo)
	if err != nil {
		t.Fatalf("上传文件失败: %v", err)
	}
	if url != "http://mockurl/stock_snapshots_20250801.xlsx" {
		t.Errorf("返回URL不符: %s", url)
	}
	t.Logf("模拟上传成功, URL: %s\n", url)
}

func TestUploadFile_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	filePath := filepath.Join(t.TempDir(), "stock_snapshots.xlsx")
	if err := os.WriteFile(filePath, []byte("excel-bytes"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	_, err := UploadFile(filePath, "stock_snapshots.xlsx", &OssInfo{Url: ts.URL, Timeout: 5})
	if err == nil {
		t.Fatal("期望返回错误")
	}
}

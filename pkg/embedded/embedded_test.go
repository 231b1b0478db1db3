package embedded

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func withFS(t *testing.T, fsys fstest.MapFS) {
	t.Helper()
	Init(fsys)
	t.Cleanup(func() {
		dataFS = nil
		initialized = false
	})
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	initialized = false
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	withFS(t, fstest.MapFS{})
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestReadFileNotInitialized 测试未初始化时读取内置路径
func TestReadFileNotInitialized(t *testing.T) {
	initialized = false

	_, err := ReadFile("data/rules.yaml")
	if err == nil {
		t.Fatal("Expected error when reading data/ before Init()")
	}
	if err.Error() != "embedded package not initialized, call Init() first" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

// TestReadFileEmbedded 测试从内置文件系统读取
func TestReadFileEmbedded(t *testing.T) {
	withFS(t, fstest.MapFS{
		"data/rules.yaml":           {Data: []byte("units: {}")},
		"data/scenarios/duel.yaml":  {Data: []byte("width: 4")},
		"data/scenarios/siege.yaml": {Data: []byte("width: 8")},
	})

	data, err := ReadFile("./data/rules.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "units: {}" {
		t.Errorf("Unexpected content: %q", data)
	}

	if !Exists("data/scenarios/duel.yaml") {
		t.Error("Expected embedded scenario to exist")
	}
	if Exists("data/missing.yaml") {
		t.Error("Missing file should not exist")
	}

	matches, err := Glob("data/scenarios/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 scenarios, got %v", matches)
	}
}

// TestReadFileFromDisk 测试非 data/ 路径直接读磁盘
func TestReadFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("width: 3"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "width: 3" {
		t.Errorf("Unexpected content: %q", data)
	}
	if !Exists(path) {
		t.Error("Expected disk file to exist")
	}

	if _, err := Glob("assets/*.png"); err == nil {
		t.Error("Glob outside data/ should fail")
	}
}

package language

import (
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"coderun/internal/runner/workspace"
	appErr "coderun/pkg/errors"
)

func testLayout() workspace.Layout {
	return workspace.Layout{SourceDir: "/work/codes", OutputDir: "/work/outputs"}
}

func TestRegistryResolveBuiltins(t *testing.T) {
	r, err := NewRegistry(testLayout(), nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	cases := []struct {
		tag     string
		compile []string
		execute []string
		version []string
	}{
		{
			tag:     "java",
			execute: []string{"java", "/work/codes/j1.java"},
			version: []string{"java", "--version"},
		},
		{
			tag:     "cpp",
			compile: []string{"g++", "/work/codes/j1.cpp", "-o", "/work/outputs/j1.out"},
			execute: []string{"/work/outputs/j1.out"},
			version: []string{"g++", "--version"},
		},
		{
			tag:     "py",
			execute: []string{"python3", "/work/codes/j1.py"},
			version: []string{"python3", "--version"},
		},
		{
			tag:     "c",
			compile: []string{"gcc", "/work/codes/j1.c", "-o", "/work/outputs/j1.out"},
			execute: []string{"/work/outputs/j1.out"},
			version: []string{"gcc", "--version"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			cmds, err := r.Resolve(tc.tag, "j1")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !reflect.DeepEqual(cmds.Compile, tc.compile) {
				t.Fatalf("compile = %q, want %q", cmds.Compile, tc.compile)
			}
			if !reflect.DeepEqual(cmds.Execute, tc.execute) {
				t.Fatalf("execute = %q, want %q", cmds.Execute, tc.execute)
			}
			if !reflect.DeepEqual(cmds.Version, tc.version) {
				t.Fatalf("version = %q, want %q", cmds.Version, tc.version)
			}
		})
	}
}

func TestRegistryResolveUnknownLanguage(t *testing.T) {
	r, err := NewRegistry(testLayout(), nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for _, tag := range []string{"rust", "", "Python", "PY"} {
		_, err := r.Resolve(tag, "j1")
		if !appErr.Is(err, appErr.LanguageNotSupported) {
			t.Fatalf("tag %q: expected LanguageNotSupported, got %v", tag, err)
		}
	}
}

func TestRegistryResolveIsPure(t *testing.T) {
	r, err := NewRegistry(testLayout(), nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	first, _ := r.Resolve("cpp", "same")
	second, _ := r.Resolve("cpp", "same")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolve not deterministic: %+v vs %+v", first, second)
	}

	// mutating a result must not leak into the registry
	first.Execute[0] = "tampered"
	third, _ := r.Resolve("cpp", "same")
	if third.Execute[0] == "tampered" {
		t.Fatal("resolved argv shares storage with the registry")
	}
}

func TestRegistryPathsWithSpacesStaySingleArgs(t *testing.T) {
	layout := workspace.Layout{SourceDir: "/tmp/my codes", OutputDir: "/tmp/my outputs"}
	r, err := NewRegistry(layout, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	cmds, err := r.Resolve("c", "j2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"gcc", filepath.Join("/tmp/my codes", "j2.c"), "-o", filepath.Join("/tmp/my outputs", "j2.out")}
	if !reflect.DeepEqual(cmds.Compile, want) {
		t.Fatalf("compile = %q, want %q", cmds.Compile, want)
	}
}

func TestRegistryOverrides(t *testing.T) {
	r, err := NewRegistry(testLayout(), []Override{
		{ID: "py", RunCmd: "/opt/python/bin/python3 -u {src}"},
		{ID: "cpp", CompileCmd: "g++ -O2 -std=c++17 {src} -o {bin}"},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	py, _ := r.Resolve("py", "j3")
	if want := []string{"/opt/python/bin/python3", "-u", "/work/codes/j3.py"}; !reflect.DeepEqual(py.Execute, want) {
		t.Fatalf("py execute = %q, want %q", py.Execute, want)
	}
	if want := []string{"python3", "--version"}; !reflect.DeepEqual(py.Version, want) {
		t.Fatalf("py version should keep builtin, got %q", py.Version)
	}

	cpp, _ := r.Resolve("cpp", "j3")
	if len(cpp.Compile) != 6 || cpp.Compile[1] != "-O2" {
		t.Fatalf("cpp compile = %q", cpp.Compile)
	}
}

func TestRegistryRejectsBadOverrides(t *testing.T) {
	cases := []struct {
		name     string
		override Override
		code     appErr.ErrorCode
	}{
		{name: "unknown tag", override: Override{ID: "go", RunCmd: "go run {src}"}, code: appErr.LanguageNotSupported},
		{name: "compile on interpreted", override: Override{ID: "py", CompileCmd: "pyc {src}"}, code: appErr.InvalidParams},
		{name: "unbalanced quote", override: Override{ID: "java", RunCmd: `java "{src}`}, code: appErr.InvalidParams},
		{name: "blank template", override: Override{ID: "c", RunCmd: "   "}, code: appErr.InvalidParams},
		{name: "bin without artifact", override: Override{ID: "java", RunCmd: "java {bin}"}, code: appErr.InvalidParams},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(testLayout(), []Override{tc.override})
			if !appErr.Is(err, tc.code) {
				t.Fatalf("expected code %d, got %v", tc.code, err)
			}
		})
	}
}

func TestRegistrySupportedOrder(t *testing.T) {
	r, err := NewRegistry(testLayout(), nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	want := []Language{Java, Cpp, Python, C}
	if got := r.Supported(); !reflect.DeepEqual(got, want) {
		t.Fatalf("supported = %v, want %v", got, want)
	}
	specs := r.Specs()
	if len(specs) != len(want) || specs[1].ArtifactExt != "out" || specs[0].Compiled() {
		t.Fatalf("unexpected specs: %+v", specs)
	}
}

func TestRegistryConcurrentResolve(t *testing.T) {
	r, err := NewRegistry(testLayout(), nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tag := range r.Supported() {
				if _, err := r.Resolve(string(tag), "job"); err != nil {
					t.Errorf("resolve %s: %v", tag, err)
				}
			}
		}()
	}
	wg.Wait()
}

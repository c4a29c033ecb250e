//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders/d3d11"

// Built-in HLSL shaders and the .cso prefix they compile to.
var hlslShaders = []string{"texture", "color"}

// Compiles the Direct3D11 built-in shaders with fxc. Windows only.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the sample application into bin/.
func (Build) Sample() error {
	output := filepath.Join("bin", "prism")
	if runtime.GOOS == "windows" {
		output += ".exe"
	}
	if _, err := executeCmd("go", withArgs("build", "-o", output, "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if runtime.GOOS != "windows" {
		fmt.Println("fxc is only available on Windows, skipping shader compilation")
		return nil
	}
	for _, name := range hlslShaders {
		source := filepath.Join(shaderDir, name+".hlsl")
		stages := []struct{ profile, entry, suffix string }{
			{"vs_4_0", "vs_main", "_vs.cso"},
			{"ps_4_0", "ps_main", "_ps.cso"},
		}
		for _, s := range stages {
			output := filepath.Join(shaderDir, name+s.suffix)
			args := withArgs("/nologo", "/T", s.profile, "/E", s.entry, "/Fo", output, source)
			if _, err := executeCmd("fxc", args, withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}

//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/voxelsplace/voxdoc/api"
	"github.com/voxelsplace/voxdoc/vox"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// vox2glb(bytes, mode?) -> Uint8Array | error string
func vox2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	opts := api.Options{Workers: 1}
	if len(args) > 1 && args[1].Type() == js.TypeString {
		opts.MeshMode = args[1].String()
	}
	out, err := api.VoxToGLB(context.Background(), bytesFromJS(args[0]), opts)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// archiveVox({name: Uint8Array}, codec?) -> Uint8Array | error string
func archiveVox(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	codec := vox.CodecZstd
	if len(args) > 1 && args[1].Type() == js.TypeString {
		c, err := vox.ParseCodec(args[1].String())
		if err != nil {
			return js.ValueOf(err.Error())
		}
		codec = c
	}
	out, err := api.ArchiveVox(files, vox.LayoutCDC, codec)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// unarchiveVox(bytes) -> {name: Uint8Array} | error string
func unarchiveVox(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing archive bytes")
	}
	files, err := api.UnarchiveVox(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

// patchVox(voxBytes, editBytes, model?) -> Uint8Array | error string
func patchVox(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing vox or edit bytes")
	}
	model := 0
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		model = args[2].Int()
	}
	out, _, err := api.PatchVox(bytesFromJS(args[0]), bytesFromJS(args[1]), model)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func main() {
	js.Global().Set("vox2glb", js.FuncOf(vox2glb))
	js.Global().Set("archiveVox", js.FuncOf(archiveVox))
	js.Global().Set("unarchiveVox", js.FuncOf(unarchiveVox))
	js.Global().Set("patchVox", js.FuncOf(patchVox))
	select {}
}

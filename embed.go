// Package rts 声明内置数据文件
//
// //go:embed 只能嵌入当前包目录及其子目录的文件，因此声明放在项目根目录，
// 由 cmd/ 下的程序传给 embedded.Init。
package rts

import "embed"

// DataFS 内置的种类目录和演示场景
//
//go:embed data
var DataFS embed.FS

//go:build !linux

package sysinfo

func fillPlatform(info *Info) {}

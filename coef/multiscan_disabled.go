//go:build nomultiscan

package coef

const multiScanSupported = false

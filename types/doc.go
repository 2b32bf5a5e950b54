// Package types provides core types used across the miniagents framework.
// This package has ZERO dependencies on other miniagents packages to avoid
// circular imports. All other packages should import types from here.
package types

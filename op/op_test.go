package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(BuildAttrRef)
	assert.Equal(t, "BUILD_ATTR_REF", info.Name)
	assert.Equal(t, 1, info.OperandCount)
	assert.Equal(t, BuildAttrRef, info.Code)
}

func TestCompareOpSpecialMethod(t *testing.T) {
	assert.Equal(t, "__eq__", Equal.SpecialMethod())
	assert.Equal(t, "__eq__", NotEqual.SpecialMethod())
	assert.Equal(t, "__lt__", LessThan.SpecialMethod())
}

func TestBinaryOpSpecialMethod(t *testing.T) {
	assert.Equal(t, "__add__", Add.SpecialMethod())
	assert.Equal(t, "__floordiv__", FloorDivide.SpecialMethod())
}

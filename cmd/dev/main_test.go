package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbsinterval/domain/interval"
)

func TestRunSmokeTests(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, runSmokeTests(context.Background(), &out))

	assert.Contains(t, out.String(), "Smoke tests: 12/12 passed")
}

func TestTestDeterminism(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, testDeterminism(context.Background(), &out))

	assert.Contains(t, out.String(), "results identical")
}

func TestCompareEvaluations_DetectsDrift(t *testing.T) {
	a := &interval.Evaluation{Curve: interval.Curve{Points: []interval.CurvePoint{{X: 1, MinSize: 2}}}}
	b := &interval.Evaluation{Curve: interval.Curve{Points: []interval.CurvePoint{{X: 1, MinSize: 3}}}}

	err := compareEvaluations(a, b)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample 0 differs")
}

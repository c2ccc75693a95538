package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/grading"
)

func staticFactory(grader grading.Grader) GraderFactory {
	return func(context.Context) (grading.Grader, func(), error) {
		return grader, func() {}, nil
	}
}

type trackedFactory struct {
	built   int
	cleaned int
}

func (f *trackedFactory) factory() GraderFactory {
	return func(context.Context) (grading.Grader, func(), error) {
		f.built++
		return grading.NewGrader(), func() { f.cleaned++ }, nil
	}
}

func runCLI(t *testing.T, factory GraderFactory, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(factory, strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommandPrintsVerdict(t *testing.T) {
	out, err := runCLI(t, staticFactory(grading.NewGrader()), "",
		"check", "--modality", "fill",
		"--question", "The capital of France is ___.",
		"--teacher", "Paris",
		"--student", "the capital of france is paris",
	)
	require.NoError(t, err)
	require.Equal(t, "✔ Correct [context_strip]\n", out)
}

func TestCheckCommandJSON(t *testing.T) {
	out, err := runCLI(t, staticFactory(grading.NewGrader()), "",
		"check", "-m", "numeric", "-t", "2.25", "-s", "2.3", "--json",
	)
	require.NoError(t, err)

	var response dto.GradeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.True(t, response.Correct)
	require.Equal(t, "numeric", response.Modality)
}

func TestCheckCommandErrors(t *testing.T) {
	_, err := runCLI(t, staticFactory(grading.NewGrader()), "", "check", "--modality", "essay")
	require.ErrorIs(t, err, grading.ErrUnsupportedModality)

	_, err = runCLI(t, staticFactory(grading.NewGrader()), "", "check")
	require.Error(t, err)

	factoryErr := errors.New("bad config")
	failing := func(context.Context) (grading.Grader, func(), error) { return nil, nil, factoryErr }
	_, err = runCLI(t, failing, "", "check", "--modality", "code")
	require.ErrorIs(t, err, factoryErr)
}

func TestSessionCommandReadsStdin(t *testing.T) {
	out, err := runCLI(t, staticFactory(grading.NewGrader()), lines("1", "1", "0", "0", "0", "q", "7", "7.0"), "session")
	require.NoError(t, err)
	require.Contains(t, out, "FINAL SCORE: 1 / 1")
}

func TestCheckCommandValidatesThreshold(t *testing.T) {
	for _, value := range []string{"-0.5", "0", "1.5"} {
		tracked := &trackedFactory{}
		_, err := runCLI(t, tracked.factory(), "",
			"check", "-m", "semantic", "-q", "The sky is ____", "-t", "blue", "-s", "azure", "--threshold", value,
		)
		require.ErrorContains(t, err, "threshold must be in (0, 1]", "threshold %s", value)
		require.Zero(t, tracked.built, "threshold %s", value)
	}

	tracked := &trackedFactory{}
	out, err := runCLI(t, tracked.factory(), "", "check", "-m", "numeric", "-t", "3", "-s", "3", "--threshold", "0.8")
	require.NoError(t, err)
	require.Equal(t, "✔ Correct [numeric]\n", out)
	require.Equal(t, 1, tracked.built)
}

func TestCommandsReleaseGrader(t *testing.T) {
	tracked := &trackedFactory{}
	_, err := runCLI(t, tracked.factory(), "", "check", "-m", "numeric", "-t", "3", "-s", "4")
	require.NoError(t, err)
	require.Equal(t, 1, tracked.cleaned)

	_, err = runCLI(t, tracked.factory(), lines("1", "1", "0", "0", "0", "q", "7", "7"), "session")
	require.NoError(t, err)
	require.Equal(t, 2, tracked.cleaned)

	// A failed session still releases the grader.
	_, err = runCLI(t, tracked.factory(), lines("1", "0", "0", "0", "0"), "session")
	require.ErrorIs(t, err, ErrCountMismatch)
	require.Equal(t, 3, tracked.cleaned)
	require.Equal(t, tracked.built, tracked.cleaned)
}

func TestCloseRedisReleasesClient(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	closeRedis(client, zerolog.Nop())()
	require.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)

	require.NotPanics(t, closeRedis(nil, zerolog.Nop()))
}

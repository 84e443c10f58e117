//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tidwall/gjson"
)

// handler builds one fork from a request of the form
//
//	{"fork": {"id": ..., <fork config>}, "prototypes": [...], "locale": {...}}
//
// and responds with the fork's data file.
func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body, err := requestBody(event)
	if err != nil {
		return errResp(400, err.Error())
	}
	if !gjson.Valid(body) {
		return errResp(400, "invalid JSON")
	}
	req := gjson.Parse(body)
	forkNode := req.Get("fork")
	if !forkNode.IsObject() {
		return errResp(400, "missing fork field")
	}
	id := forkNode.Get("id").String()
	if id == "" {
		return errResp(400, "missing fork.id")
	}
	protos := req.Get("prototypes")
	if !protos.IsArray() {
		return errResp(400, "prototypes must be an array")
	}

	fork, err := parseForkConfig(id, forkNode)
	if err != nil {
		return errResp(400, err.Error())
	}
	locale, err := ParseLocaleTable(req.Get("locale").Raw)
	if err != nil {
		return errResp(400, err.Error())
	}

	logger := log.New(os.Stderr, "", 0)
	raw, err := ParseRawGameData(protos.Raw, logger)
	if err != nil {
		return errResp(400, err.Error())
	}

	data, _, err := BuildFork(fork, &ForkInputs{Raw: raw, Locale: locale}, logger)
	if err != nil {
		return errResp(500, err.Error())
	}

	store := newMemoryStore()
	entry, err := NewDataWriter(store, logger).WriteFork(ctx, data)
	if err != nil {
		return errResp(500, err.Error())
	}
	out, err := store.Get(ctx, gameDataKey(fork.ID, entry.Hash))
	if err != nil {
		return errResp(500, err.Error())
	}

	return dataResp(out, entry.Hash), nil
}

// requestBody returns the request's JSON text. Function URLs base64-encode
// bodies they do not recognize as text.
func requestBody(event events.LambdaFunctionURLRequest) (string, error) {
	if !event.IsBase64Encoded {
		return event.Body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return "", errors.New("invalid base64 body")
	}
	return string(decoded), nil
}

// dataResp serves a fork's data file. The hash is the same one that names
// the file in a blob store, so clients can cache on it.
func dataResp(data []byte, hash string) events.LambdaFunctionURLResponse {
	return events.LambdaFunctionURLResponse{
		StatusCode: 200,
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"Cache-Control":  "public, max-age=31536000, immutable",
			"ETag":           `"` + hash + `"`,
			"X-Content-Hash": hash,
		},
		Body: string(data),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// errResp reports a failed build. Errors are never cached.
func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, err := json.Marshal(errorBody{Error: msg})
	if err != nil {
		return events.LambdaFunctionURLResponse{}, err
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: code,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Cache-Control": "no-store",
		},
		Body: string(body),
	}, nil
}

func main() {
	lambda.Start(handler)
}

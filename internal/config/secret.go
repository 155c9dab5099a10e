package config

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// SecretScheme prefixes a configuration source stored in a Kubernetes Secret.
const SecretScheme = "k8s://"

// ParseSecretRef splits k8s://<namespace>/<name>.
func ParseSecretRef(source string) (namespace, name string, err error) {
	ref := strings.TrimPrefix(source, SecretScheme)
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.Configf("config.ParseSecretRef", "invalid secret reference %q, expected %s<namespace>/<name>", source, SecretScheme)
	}
	return parts[0], parts[1], nil
}

func loadInClusterSecret(ctx context.Context, source string) (*Config, error) {
	namespace, name, err := ParseSecretRef(source)
	if err != nil {
		return nil, err
	}

	restConfig, err := rest.InClusterConfig()
	if err != nil {
		return nil, apperrors.Config("config.LoadSecret", fmt.Errorf("failed to get in-cluster config: %w", err))
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, apperrors.Config("config.LoadSecret", fmt.Errorf("failed to create kubernetes client: %w", err))
	}

	return LoadSecret(ctx, client, namespace, name)
}

// LoadSecret reads the five connection keys from a Secret's data.
func LoadSecret(ctx context.Context, client kubernetes.Interface, namespace, name string) (*Config, error) {
	secret, err := client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, apperrors.Config("config.LoadSecret", fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err))
	}

	value := func(key string) string {
		if v, ok := secret.Data[key]; ok {
			return string(v)
		}
		return secret.StringData[key]
	}

	return &Config{
		NameServer:      value("name_server"),
		Database:        value("database"),
		Username:        value("username"),
		Password:        value("password"),
		ControladorODBC: value("controlador_odbc"),
	}, nil
}

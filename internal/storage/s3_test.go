package storage

import "testing"

func TestPublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "явный PublicURL",
			cfg:  Config{Bucket: "qr-assets", PublicURL: "https://cdn.nadovalabs.com/"},
			want: "https://cdn.nadovalabs.com",
		},
		{
			name: "кастомный endpoint (MinIO)",
			cfg:  Config{Bucket: "qr-assets", Endpoint: "http://minio:9000"},
			want: "http://minio:9000/qr-assets",
		},
		{
			name: "AWS S3 по умолчанию",
			cfg:  Config{Bucket: "qr-assets"},
			want: "https://qr-assets.s3.us-east-1.amazonaws.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := publicBase(tt.cfg, "us-east-1")
			if got != tt.want {
				t.Errorf("publicBase() = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestObjectKeys(t *testing.T) {
	if got := ObjectKeyImage("q42", "png"); got != "images/q42.png" {
		t.Errorf("ObjectKeyImage() = %q", got)
	}
	if got := ObjectKeyImage("q42", ".jpg"); got != "images/q42.jpg" {
		t.Errorf("ObjectKeyImage() с точкой = %q", got)
	}
	if got := ObjectKeyCoa("q42"); got != "coa/q42.pdf" {
		t.Errorf("ObjectKeyCoa() = %q", got)
	}
}

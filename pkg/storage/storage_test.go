package storage

import "testing"

func TestPersistentVolumeAndMountNamesMatch(t *testing.T) {
	p := NewPersistent("data", "/var/lib/data", "1Gi", "")
	vols := p.Volumes()
	mounts := p.MountsFor("db")
	if len(vols) != 1 || len(mounts) != 1 {
		t.Fatalf("expected one volume and one mount, got %d/%d", len(vols), len(mounts))
	}
	if vols[0].Name != mounts[0].Name {
		t.Errorf("volume name %q != mount volume name %q", vols[0].Name, mounts[0].Name)
	}
}

func TestPersistentClaimTemplateNameMatchesVolume(t *testing.T) {
	p := NewPersistent("data", "/var/lib/data", "1Gi", "")
	templates := p.ClaimTemplates()
	vols := p.Volumes()
	if len(templates) != 1 {
		t.Fatalf("expected one claim template, got %d", len(templates))
	}
	if templates[0].Name != vols[0].Name {
		t.Errorf("claim template name %q != volume name %q", templates[0].Name, vols[0].Name)
	}
}

func TestPersistentStandaloneClaimNameMatchesVolume(t *testing.T) {
	p := NewPersistent("data", "/var/lib/data", "1Gi", "")
	claims := p.StandaloneClaims()
	vols := p.Volumes()
	if claims[0].Name != vols[0].Name {
		t.Errorf("standalone claim name %q != volume name %q", claims[0].Name, vols[0].Name)
	}
}

func TestFileMaterialRendersConfigMapAndMountAsUnit(t *testing.T) {
	fm := NewFileMaterial("", "/docker-entrypoint-initdb.d", File{Path: "init.sql", Contents: []byte("select 1;")})
	cm, mgr := fm.Render("db", map[string]string{"app": "db"})

	if cm.Name != "db-init" {
		t.Errorf("configmap name = %q, want db-init", cm.Name)
	}
	if _, ok := cm.BinaryData["init.sql"]; !ok {
		t.Errorf("configmap missing init.sql data key")
	}

	vols := mgr.Volumes()
	mounts := mgr.MountsFor("db")
	if len(vols) != 1 || len(mounts) != 1 {
		t.Fatalf("expected one volume and mount from FileMaterial, got %d/%d", len(vols), len(mounts))
	}
	if vols[0].ConfigMap == nil || vols[0].ConfigMap.Name != cm.Name {
		t.Errorf("volume does not reference rendered configmap %q", cm.Name)
	}
	if !mounts[0].ReadOnly {
		t.Errorf("init-script mount should be read-only")
	}
	if mounts[0].MountPath != "/docker-entrypoint-initdb.d" {
		t.Errorf("mount path = %q", mounts[0].MountPath)
	}
}

func TestCompositeUnionsChildren(t *testing.T) {
	c := NewComposite(
		NewEmptyDir("scratch", "/tmp/scratch", ""),
		NewPersistent("data", "/var/lib/data", "1Gi", ""),
	)
	if len(c.Volumes()) != 2 {
		t.Fatalf("expected 2 volumes, got %d", len(c.Volumes()))
	}
	if len(c.ClaimTemplates()) != 1 {
		t.Fatalf("expected 1 claim template (only Persistent contributes one), got %d", len(c.ClaimTemplates()))
	}
}

func TestNoneContributesNothing(t *testing.T) {
	var n None
	if len(n.Volumes()) != 0 || len(n.MountsFor("x")) != 0 || len(n.ClaimTemplates()) != 0 || len(n.StandaloneClaims()) != 0 {
		t.Fatal("None should contribute nothing")
	}
}
